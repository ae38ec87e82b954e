package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/brandlink-backend/internal/models"
	"github.com/ignatzorin/brandlink-backend/internal/repository/common"
)

// BrandRepository работает с таблицей brands и активным брендом пользователя.
type BrandRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewBrandRepository создаёт репозиторий брендов.
func NewBrandRepository(db *sqlx.DB, queryTimeout time.Duration) *BrandRepository {
	return &BrandRepository{db: db, timeout: queryTimeout}
}

// ListByOwner возвращает бренды пользователя в порядке создания.
func (r *BrandRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Brand, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	brands := make([]models.Brand, 0)
	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM brands
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`
	if err := r.db.SelectContext(ctx, &brands, query, ownerID); err != nil {
		return nil, fmt.Errorf("brand repository: list by owner %w", err)
	}

	return brands, nil
}

// Create сохраняет бренд. Если у владельца нет активного бренда, новый становится активным.
// Возвращает true, когда бренд был выбран активным.
func (r *BrandRepository) Create(ctx context.Context, brand *models.Brand) (bool, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var activated bool
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO brands (name, owner_id)
			VALUES ($1, $2)
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query, brand.Name, brand.OwnerID).
			Scan(&brand.ID, &brand.CreatedAt, &brand.UpdatedAt); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE users SET active_brand_id = $1, updated_at = NOW() WHERE id = $2 AND active_brand_id IS NULL`,
			brand.ID, brand.OwnerID,
		)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		activated = n > 0
		return nil
	})
	if err != nil {
		if _, ok := common.UniqueViolation(err); ok {
			return false, ErrBrandNameTaken
		}
		return false, fmt.Errorf("brand repository: create %w", err)
	}

	return activated, nil
}

// GetByID возвращает бренд по идентификатору без проверки владельца.
func (r *BrandRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	return common.GetByID[models.Brand](ctx, r.db, "brands", id, ErrBrandNotFound)
}

// GetOwned возвращает бренд, только если он принадлежит ownerID.
func (r *BrandRepository) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Brand, error) {
	brand, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if brand.OwnerID != ownerID {
		return nil, ErrBrandNotFound
	}
	return brand, nil
}

// UpdateName переименовывает бренд владельца.
func (r *BrandRepository) UpdateName(ctx context.Context, id, ownerID uuid.UUID, name string) (*models.Brand, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var brand models.Brand
	query := `
		UPDATE brands SET name = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
		RETURNING id, name, owner_id, created_at, updated_at
	`
	if err := r.db.GetContext(ctx, &brand, query, name, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBrandNotFound
		}
		if _, ok := common.UniqueViolation(err); ok {
			return nil, ErrBrandNameTaken
		}
		return nil, fmt.Errorf("brand repository: update name %w", err)
	}

	return &brand, nil
}

// Delete удаляет бренд владельца вместе с его каналами.
func (r *BrandRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("brand repository: delete %w", err)
	}

	return common.RowsAffectedOr(result, ErrBrandNotFound)
}

// SetActive делает бренд активным. Чужой или несуществующий бренд даёт ErrBrandNotFound.
func (r *BrandRepository) SetActive(ctx context.Context, userID, brandID uuid.UUID) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE users SET active_brand_id = $1, updated_at = NOW()
		WHERE id = $2
		  AND EXISTS (SELECT 1 FROM brands WHERE id = $1 AND owner_id = $2)
	`
	result, err := r.db.ExecContext(ctx, query, brandID, userID)
	if err != nil {
		return fmt.Errorf("brand repository: set active %w", err)
	}

	return common.RowsAffectedOr(result, ErrBrandNotFound)
}

// GetActive возвращает активный бренд пользователя или ErrNoActiveBrand.
func (r *BrandRepository) GetActive(ctx context.Context, userID uuid.UUID) (*models.Brand, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var brand models.Brand
	query := `
		SELECT b.id, b.name, b.owner_id, b.created_at, b.updated_at
		FROM users u
		JOIN brands b ON b.id = u.active_brand_id
		WHERE u.id = $1
	`
	if err := r.db.GetContext(ctx, &brand, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveBrand
		}
		return nil, fmt.Errorf("brand repository: get active %w", err)
	}

	return &brand, nil
}
