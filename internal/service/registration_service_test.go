package service

import (
	"context"
	"net/http"
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

// mockUserStore реализует RegistrationUserRepository для тестов.
type mockUserStore struct {
	byPhone map[string]*models.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{byPhone: make(map[string]*models.User)}
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	if _, ok := m.byPhone[user.Phone]; ok {
		return repository.ErrPhoneTaken
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.byPhone[user.Phone] = user
	return nil
}

// fakeVerifier реализует PhoneVerifier в памяти.
type fakeVerifier struct {
	issued   map[string]bool
	verified map[string]bool
	code     string
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{issued: map[string]bool{}, verified: map[string]bool{}, code: "424242"}
}

func (f *fakeVerifier) Issue(ctx context.Context, phone string) error {
	f.issued[phone] = true
	return nil
}

func (f *fakeVerifier) Verify(ctx context.Context, phone, code string) (bool, error) {
	if !f.issued[phone] || code != f.code {
		return false, nil
	}
	delete(f.issued, phone)
	f.verified[phone] = true
	return true, nil
}

func (f *fakeVerifier) IsVerified(ctx context.Context, phone string) (bool, error) {
	return f.verified[phone], nil
}

func (f *fakeVerifier) TTLRemaining(ctx context.Context, phone string) (time.Duration, bool, error) {
	if f.issued[phone] {
		return 5 * time.Minute, true, nil
	}
	return 0, false, nil
}

func (f *fakeVerifier) Invalidate(ctx context.Context, phone string) error {
	delete(f.issued, phone)
	return nil
}

func (f *fakeVerifier) InvalidateVerification(ctx context.Context, phone string) error {
	delete(f.verified, phone)
	return nil
}

func completeInput(phone string) RegisterInput {
	return RegisterInput{
		Step:        models.StepCompleteRegistration,
		Phone:       phone,
		Password:    "secret1",
		DateOfBirth: "1990-04-12",
		Gender:      models.GenderFemale,
	}
}

func TestRegistrationService_FullFlow(t *testing.T) {
	users := newMockUserStore()
	otp := newFakeVerifier()
	svc := NewRegistrationService(users, otp, true, nil)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Step: models.StepSendOTP, Phone: "+15551234567"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.HTTPStatus)
	assert.Equal(t, "OTP sent successfully", res.Message)
	assert.Equal(t, models.StepVerifyOTP, res.Step)
	assert.Equal(t, int64(300), res.ExpiresIn)

	_, err = svc.Register(ctx, RegisterInput{Step: models.StepVerifyOTP, Phone: "15551234567", OTP: "000000"})
	assert.ErrorIs(t, err, apperror.ErrInvalidOTP)

	res, err = svc.Register(ctx, RegisterInput{Step: models.StepVerifyOTP, Phone: "15551234567", OTP: "424242"})
	require.NoError(t, err)
	assert.Equal(t, models.StepCompleteRegistration, res.Step)

	res, err = svc.Register(ctx, completeInput("15551234567"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.HTTPStatus)
	assert.Equal(t, "Your account has been created successfully!", res.Message)

	stored := users.byPhone["15551234567"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
	cost, err := bcrypt.Cost([]byte(stored.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	assert.False(t, otp.verified["15551234567"], "флаг подтверждения должен сниматься после регистрации")
}

func TestRegistrationService_RequiresVerifiedPhone(t *testing.T) {
	svc := NewRegistrationService(newMockUserStore(), newFakeVerifier(), true, nil)

	_, err := svc.Register(context.Background(), completeInput("15551234567"))
	assert.ErrorIs(t, err, apperror.ErrPhoneNotVerified)
}

func TestRegistrationService_VerificationGapWhenDisabled(t *testing.T) {
	users := newMockUserStore()
	svc := NewRegistrationService(users, newFakeVerifier(), false, nil)

	res, err := svc.Register(context.Background(), completeInput("15551234567"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.HTTPStatus)
	assert.Len(t, users.byPhone, 1)
}

func TestRegistrationService_DuplicatePhone(t *testing.T) {
	users := newMockUserStore()
	otp := newFakeVerifier()
	svc := NewRegistrationService(users, otp, true, nil)
	ctx := context.Background()

	otp.verified["15551234567"] = true
	_, err := svc.Register(ctx, completeInput("15551234567"))
	require.NoError(t, err)

	otp.verified["15551234567"] = true
	_, err = svc.Register(ctx, completeInput("+15551234567"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrPhoneAlreadyTaken)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
}

func TestRegistrationService_Validation(t *testing.T) {
	svc := NewRegistrationService(newMockUserStore(), newFakeVerifier(), false, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      RegisterInput
		message string
	}{
		{"unknown step", RegisterInput{Step: "skip"}, "Invalid step"},
		{"send without phone", RegisterInput{Step: models.StepSendOTP}, "Phone number is required"},
		{"send bad phone", RegisterInput{Step: models.StepSendOTP, Phone: "abc"}, "Enter a valid mobile number"},
		{"verify without otp", RegisterInput{Step: models.StepVerifyOTP, Phone: "15551234567"}, "Phone number and OTP are required"},
		{"short password", func() RegisterInput { in := completeInput("15551234567"); in.Password = "123"; return in }(), "Passwords must be at least 6 characters"},
		{"bad date", func() RegisterInput { in := completeInput("15551234567"); in.DateOfBirth = "yesterday"; return in }(), "Enter a valid date of birth"},
		{"bad gender", func() RegisterInput { in := completeInput("15551234567"); in.Gender = "x"; return in }(), "Select your gender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}
