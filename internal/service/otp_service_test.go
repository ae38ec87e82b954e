package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/brandlink-backend/internal/repository"
	"github.com/ignatzorin/brandlink-backend/internal/sms"
)

type mockSMSProvider struct {
	mock.Mock
}

func (m *mockSMSProvider) SendCode(ctx context.Context, phone string) error {
	return m.Called(phone).Error(0)
}

func (m *mockSMSProvider) CheckCode(ctx context.Context, phone, code string) (bool, error) {
	args := m.Called(phone, code)
	return args.Bool(0), args.Error(1)
}

func newTestOTPService(t *testing.T, provider sms.Provider) (*OTPService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	state := repository.NewOTPStateRepository(client, time.Second)
	return NewOTPService(state, provider, 5*time.Minute, 720*time.Hour, nil), mr
}

func TestOTPService_WrongThenRightCode(t *testing.T) {
	provider := &mockSMSProvider{}
	provider.On("SendCode", "5551234").Return(nil)
	provider.On("CheckCode", "5551234", "000000").Return(false, nil).Once()
	provider.On("CheckCode", "5551234", "424242").Return(true, nil).Once()

	svc, mr := newTestOTPService(t, provider)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "5551234"))
	assert.True(t, mr.Exists("otp:5551234"))

	ok, err := svc.Verify(ctx, "5551234", "000000")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("otp:5551234"), "неверный код не должен сбрасывать состояние")
	assert.False(t, mr.Exists("verified:5551234"))

	ok, err = svc.Verify(ctx, "5551234", "424242")
	require.NoError(t, err)
	assert.True(t, ok)

	verified, err := svc.IsVerified(ctx, "5551234")
	require.NoError(t, err)
	assert.True(t, verified)
	assert.Equal(t, 720*time.Hour, mr.TTL("verified:5551234"))

	provider.AssertExpectations(t)
}

func TestOTPService_VerifyIsSingleUse(t *testing.T) {
	provider := &mockSMSProvider{}
	provider.On("SendCode", "5551234").Return(nil)
	provider.On("CheckCode", "5551234", "424242").Return(true, nil).Once()

	svc, mr := newTestOTPService(t, provider)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "5551234"))

	ok, err := svc.Verify(ctx, "5551234", "424242")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, mr.Exists("otp:5551234"))

	// Второй вызов не доходит до провайдера: выданного кода больше нет.
	ok, err = svc.Verify(ctx, "5551234", "424242")
	require.NoError(t, err)
	assert.False(t, ok)

	provider.AssertNumberOfCalls(t, "CheckCode", 1)
}

func TestOTPService_VerifyWithoutIssueSkipsProvider(t *testing.T) {
	provider := &mockSMSProvider{}
	svc, _ := newTestOTPService(t, provider)

	ok, err := svc.Verify(context.Background(), "5551234", "424242")
	require.NoError(t, err)
	assert.False(t, ok)

	provider.AssertNotCalled(t, "CheckCode", mock.Anything, mock.Anything)
}

func TestOTPService_VerifyAfterExpiry(t *testing.T) {
	provider := &mockSMSProvider{}
	provider.On("SendCode", "5551234").Return(nil)

	svc, mr := newTestOTPService(t, provider)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "5551234"))
	mr.FastForward(5*time.Minute + time.Second)

	ok, err := svc.Verify(ctx, "5551234", "424242")
	require.NoError(t, err)
	assert.False(t, ok)
	provider.AssertNotCalled(t, "CheckCode", mock.Anything, mock.Anything)
}

func TestOTPService_ProviderErrorKeepsState(t *testing.T) {
	provider := &mockSMSProvider{}
	provider.On("SendCode", "5551234").Return(nil)
	provider.On("CheckCode", "5551234", "424242").Return(false, sms.ErrUnavailable)

	svc, mr := newTestOTPService(t, provider)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "5551234"))

	ok, err := svc.Verify(ctx, "5551234", "424242")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("otp:5551234"))
}

func TestOTPService_IssueDeliveryFailure(t *testing.T) {
	provider := &mockSMSProvider{}
	provider.On("SendCode", "100").Return(errors.Join(sms.ErrRejected, errors.New("invalid number")))
	provider.On("SendCode", "200").Return(sms.ErrUnavailable)

	svc, mr := newTestOTPService(t, provider)
	ctx := context.Background()

	err := svc.Issue(ctx, "100")
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ErrCodeProviderError, appErr.Code)
	assert.False(t, mr.Exists("otp:100"))

	err = svc.Issue(ctx, "200")
	appErr, ok = apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ErrCodeProviderUnavailable, appErr.Code)
}

func TestOTPService_ReissueResetsTTL(t *testing.T) {
	provider := &mockSMSProvider{}
	provider.On("SendCode", "5551234").Return(nil)

	svc, mr := newTestOTPService(t, provider)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "5551234"))
	mr.FastForward(3 * time.Minute)
	require.NoError(t, svc.Issue(ctx, "5551234"))

	ttl, ok, err := svc.TTLRemaining(ctx, "5551234")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5*time.Minute, ttl)

	require.NoError(t, svc.Invalidate(ctx, "5551234"))
	_, ok, err = svc.TTLRemaining(ctx, "5551234")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTPService_CacheDown(t *testing.T) {
	provider := &mockSMSProvider{}
	svc, mr := newTestOTPService(t, provider)
	mr.Close()

	_, err := svc.Verify(context.Background(), "5551234", "424242")
	assert.Error(t, err)
}
