package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/brandlink-backend/internal/models"
	"github.com/ignatzorin/brandlink-backend/internal/repository/common"
)

const userColumns = `id, phone, password_hash, date_of_birth, gender, active_brand_id, created_at, updated_at`

// UserRepository отвечает за работу с таблицами users и user_sessions.
type UserRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB, queryTimeout time.Duration) *UserRepository {
	return &UserRepository{db: db, timeout: queryTimeout}
}

// Create сохраняет нового пользователя. Занятый телефон возвращает ErrPhoneTaken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO users (phone, password_hash, date_of_birth, gender)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Phone, user.PasswordHash, user.DateOfBirth, user.Gender,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if _, ok := common.UniqueViolation(err); ok {
			return ErrPhoneTaken
		}
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByPhone возвращает пользователя по номеру телефона.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	if err := r.db.GetContext(ctx, &user, query, phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by phone %w", err)
	}

	return &user, nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}

	return &user, nil
}

// Update применяет частичное обновление и возвращает актуальную запись.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error) {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Phone != nil {
		add("phone", *upd.Phone)
	}
	if upd.Gender != nil {
		add("gender", *upd.Gender)
	}
	if upd.DateOfBirth != nil {
		add("date_of_birth", *upd.DateOfBirth)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if _, ok := common.UniqueViolation(err); ok {
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("user repository: update %w", err)
	}

	return &user, nil
}

// Delete удаляет пользователя. Бренды, каналы и сессии удаляются каскадно.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("user repository: delete %w", err)
	}

	return common.RowsAffectedOr(result, ErrUserNotFound)
}

// CreateSession сохраняет новую сессию пользователя.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO user_sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		session.UserID,
		session.RefreshToken,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}

	return nil
}

// DeleteSession удаляет сессию по refresh токену. Отсутствующая сессия даёт ErrSessionNotFound.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE refresh_token = $1`, refreshToken)
	if err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}

	return common.RowsAffectedOr(result, ErrSessionNotFound)
}

// ListSessions возвращает список всех активных сессий пользователя.
func (r *UserRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM user_sessions
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
	`

	sessions := make([]models.Session, 0)
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("user repository: list sessions %w", err)
	}

	return sessions, nil
}

// DeleteSessionByID удаляет сессию пользователя по идентификатору.
func (r *UserRepository) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	ctx, cancel := common.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE id = $1 AND user_id = $2`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("user repository: delete session by id %w", err)
	}

	return common.RowsAffectedOr(result, ErrSessionNotFound)
}
