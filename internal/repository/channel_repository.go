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

// ChannelRepository хранит привязанные аккаунты и их токены доступа.
type ChannelRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewChannelRepository создаёт репозиторий каналов.
func NewChannelRepository(db *sqlx.DB, queryTimeout time.Duration) *ChannelRepository {
	return &ChannelRepository{db: db, timeout: queryTimeout}
}

// Upsert создаёт канал или обновляет токен существующего по (brand, platform, account).
// При конкурентных вызовах побеждает последняя запись.
func (r *ChannelRepository) Upsert(ctx context.Context, ch *models.Channel) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO channels (brand_id, platform, external_account_id, access_token)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (brand_id, platform, external_account_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		ch.BrandID, ch.Platform, ch.ExternalAccountID, ch.AccessToken,
	).Scan(&ch.ID, &ch.CreatedAt, &ch.UpdatedAt); err != nil {
		return fmt.Errorf("channel repository: upsert %w", err)
	}

	return nil
}

// ListByBrand возвращает каналы бренда.
func (r *ChannelRepository) ListByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Channel, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	channels := make([]models.Channel, 0)
	query := `
		SELECT id, brand_id, platform, external_account_id, access_token, created_at, updated_at
		FROM channels
		WHERE brand_id = $1
		ORDER BY created_at ASC
	`
	if err := r.db.SelectContext(ctx, &channels, query, brandID); err != nil {
		return nil, fmt.Errorf("channel repository: list by brand %w", err)
	}

	return channels, nil
}

// GetOwned возвращает канал, если его бренд принадлежит ownerID.
func (r *ChannelRepository) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Channel, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var ch models.Channel
	query := `
		SELECT c.id, c.brand_id, c.platform, c.external_account_id, c.access_token, c.created_at, c.updated_at
		FROM channels c
		JOIN brands b ON b.id = c.brand_id
		WHERE c.id = $1 AND b.owner_id = $2
	`
	if err := r.db.GetContext(ctx, &ch, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("channel repository: get owned %w", err)
	}

	return &ch, nil
}

// UpdateToken заменяет токен доступа канала владельца.
func (r *ChannelRepository) UpdateToken(ctx context.Context, id, ownerID uuid.UUID, token string) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE channels c SET access_token = $1, updated_at = NOW()
		FROM brands b
		WHERE c.id = $2 AND c.brand_id = b.id AND b.owner_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, token, id, ownerID)
	if err != nil {
		return fmt.Errorf("channel repository: update token %w", err)
	}

	return common.RowsAffectedOr(result, ErrChannelNotFound)
}

// Delete удаляет канал владельца.
func (r *ChannelRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		DELETE FROM channels c
		USING brands b
		WHERE c.id = $1 AND c.brand_id = b.id AND b.owner_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("channel repository: delete %w", err)
	}

	return common.RowsAffectedOr(result, ErrChannelNotFound)
}
