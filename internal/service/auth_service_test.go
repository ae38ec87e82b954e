package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/brandlink-backend/internal/models"
	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/brandlink-backend/internal/repository"
)

// mockAuthRepository реализует AuthRepository для тестов.
type mockAuthRepository struct {
	usersByPhone map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	sessions     map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByPhone: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) addUser(t *testing.T, phone, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Phone:        phone,
		PasswordHash: string(hash),
		Gender:       models.GenderMale,
		CreatedAt:    time.Now(),
	}
	m.usersByPhone[phone] = user
	m.usersByID[user.ID] = user
	return user
}

func (m *mockAuthRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	if user, ok := m.usersByPhone[phone]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, ok := m.sessions[refreshToken]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(m.sessions, refreshToken)
	return nil
}

func (m *mockAuthRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	var out []models.Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockAuthRepository) DeleteSessionByID(ctx context.Context, sessionID, userID uuid.UUID) error {
	for token, s := range m.sessions {
		if s.ID == sessionID && s.UserID == userID {
			delete(m.sessions, token)
			return nil
		}
	}
	return repository.ErrSessionNotFound
}

func newTestAuthService() (*AuthService, *mockAuthRepository) {
	repo := newMockAuthRepository()
	tm := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	return NewAuthService(repo, tm), repo
}

func TestAuthService_Login(t *testing.T) {
	svc, repo := newTestAuthService()
	user := repo.addUser(t, "15551234567", "secret1")
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Phone: "+15551234567", Password: "secret1"}, SessionMeta{UserAgent: "test", IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
	assert.NotEmpty(t, res.TokenPair.AccessToken)
	assert.NotEmpty(t, res.TokenPair.RefreshToken)
	assert.Equal(t, int64(900), res.TokenPair.ExpiresIn)

	session, ok := repo.sessions[res.TokenPair.RefreshToken]
	require.True(t, ok)
	require.NotNil(t, session.UserAgent)
	assert.Equal(t, "test", *session.UserAgent)
}

func TestAuthService_LoginFailuresLookAlike(t *testing.T) {
	svc, repo := newTestAuthService()
	repo.addUser(t, "15551234567", "secret1")
	ctx := context.Background()

	_, errUnknown := svc.Login(ctx, LoginInput{Phone: "15550000000", Password: "secret1"}, SessionMeta{})
	_, errWrong := svc.Login(ctx, LoginInput{Phone: "15551234567", Password: "nope"}, SessionMeta{})
	_, errEmpty := svc.Login(ctx, LoginInput{}, SessionMeta{})

	assert.ErrorIs(t, errUnknown, apperror.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, apperror.ErrInvalidCredentials)
	assert.ErrorIs(t, errEmpty, apperror.ErrInvalidCredentials)
	assert.Empty(t, repo.sessions)
}

func TestAuthService_RefreshRotates(t *testing.T) {
	svc, repo := newTestAuthService()
	repo.addUser(t, "15551234567", "secret1")
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Phone: "15551234567", Password: "secret1"}, SessionMeta{})
	require.NoError(t, err)
	old := res.TokenPair.RefreshToken

	pair, err := svc.Refresh(ctx, old, SessionMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, old, pair.RefreshToken)
	assert.Len(t, repo.sessions, 1)

	// Старый токен одноразовый.
	_, err = svc.Refresh(ctx, old, SessionMeta{})
	assert.ErrorIs(t, err, apperror.ErrInvalidRefresh)

	_, err = svc.Refresh(ctx, "garbage", SessionMeta{})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ErrCodeUnauthorized, appErr.Code)
}

func TestAuthService_LogoutAndSessions(t *testing.T) {
	svc, repo := newTestAuthService()
	user := repo.addUser(t, "15551234567", "secret1")
	ctx := context.Background()

	first, err := svc.Login(ctx, LoginInput{Phone: "15551234567", Password: "secret1"}, SessionMeta{})
	require.NoError(t, err)
	_, err = svc.Login(ctx, LoginInput{Phone: "15551234567", Password: "secret1"}, SessionMeta{})
	require.NoError(t, err)

	sessions, err := svc.ListSessions(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	require.NoError(t, svc.Logout(ctx, first.TokenPair.RefreshToken))
	require.NoError(t, svc.Logout(ctx, first.TokenPair.RefreshToken))

	sessions, err = svc.ListSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	assert.True(t, apperror.IsNotFound(svc.DeleteSession(ctx, sessions[0].ID, uuid.New())))
	require.NoError(t, svc.DeleteSession(ctx, sessions[0].ID, user.ID))
	assert.Empty(t, repo.sessions)
}

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	user := &models.User{ID: uuid.New(), Phone: "15551234567"}

	pair, refreshExp, err := tm.GeneratePair(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), refreshExp, 5*time.Second)

	id, err := tm.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	// Токены разных типов подписаны разными ключами.
	_, err = tm.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)
	_, err = tm.ParseRefresh(pair.AccessToken)
	assert.Error(t, err)

	expired := NewTokenManager("access-secret", "refresh-secret", -time.Minute, time.Hour)
	pair, _, err = expired.GeneratePair(user)
	require.NoError(t, err)
	_, err = tm.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}
