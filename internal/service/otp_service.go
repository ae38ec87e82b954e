package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/brandlink-backend/internal/logger"
	"github.com/ignatzorin/brandlink-backend/internal/metrics"
	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/brandlink-backend/internal/sms"
)

// OTPStateStore хранит факт отправки кода и флаг подтверждения телефона.
type OTPStateStore interface {
	MarkIssued(ctx context.Context, phone string, ttl time.Duration) error
	HasPending(ctx context.Context, phone string) (bool, error)
	PendingTTL(ctx context.Context, phone string) (time.Duration, bool, error)
	MarkVerified(ctx context.Context, phone string, ttl time.Duration) error
	IsVerified(ctx context.Context, phone string) (bool, error)
	ClearPending(ctx context.Context, phone string) error
	ClearVerified(ctx context.Context, phone string) error
}

// OTPService выпускает и проверяет одноразовые коды подтверждения телефона.
type OTPService struct {
	state       OTPStateStore
	provider    sms.Provider
	ttl         time.Duration
	verifiedTTL time.Duration
	metrics     *metrics.Metrics
}

// NewOTPService создаёт сервис OTP.
func NewOTPService(state OTPStateStore, provider sms.Provider, ttl, verifiedTTL time.Duration, m *metrics.Metrics) *OTPService {
	return &OTPService{
		state:       state,
		provider:    provider,
		ttl:         ttl,
		verifiedTTL: verifiedTTL,
		metrics:     m,
	}
}

// Issue отправляет код и отмечает его выдачу. Повторный вызов перезапускает срок жизни.
func (s *OTPService) Issue(ctx context.Context, phone string) error {
	if err := s.provider.SendCode(ctx, phone); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"phone": phone,
			"error": err.Error(),
		}).Warn("otp service: не удалось отправить код")

		if errors.Is(err, sms.ErrRejected) {
			s.metrics.ObserveOTPIssued("rejected")
			return apperror.Wrap(err, apperror.ErrCodeProviderError, apperror.ErrOTPDeliveryFailed.Message)
		}
		s.metrics.ObserveOTPIssued("unavailable")
		return apperror.Wrap(err, apperror.ErrCodeProviderUnavailable, apperror.ErrSMSProviderDown.Message)
	}

	if err := s.state.MarkIssued(ctx, phone, s.ttl); err != nil {
		s.metrics.ObserveOTPIssued("error")
		return err
	}

	s.metrics.ObserveOTPIssued("sent")
	return nil
}

// Verify проверяет код. Без выданного кода провайдер не вызывается.
// Ошибка провайдера и неверный код дают false без изменения состояния.
func (s *OTPService) Verify(ctx context.Context, phone, code string) (bool, error) {
	pending, err := s.state.HasPending(ctx, phone)
	if err != nil {
		return false, err
	}
	if !pending {
		s.metrics.ObserveOTPVerified("no_pending")
		return false, nil
	}

	ok, err := s.provider.CheckCode(ctx, phone, code)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"phone": phone,
			"error": err.Error(),
		}).Warn("otp service: провайдер не смог проверить код")
		s.metrics.ObserveOTPVerified("provider_error")
		return false, nil
	}
	if !ok {
		s.metrics.ObserveOTPVerified("mismatch")
		return false, nil
	}

	if err := s.state.MarkVerified(ctx, phone, s.verifiedTTL); err != nil {
		return false, err
	}

	s.metrics.ObserveOTPVerified("verified")
	return true, nil
}

// IsVerified сообщает, подтверждён ли телефон.
func (s *OTPService) IsVerified(ctx context.Context, phone string) (bool, error) {
	return s.state.IsVerified(ctx, phone)
}

// TTLRemaining возвращает оставшееся время жизни выданного кода.
func (s *OTPService) TTLRemaining(ctx context.Context, phone string) (time.Duration, bool, error) {
	return s.state.PendingTTL(ctx, phone)
}

// Invalidate отзывает выданный код.
func (s *OTPService) Invalidate(ctx context.Context, phone string) error {
	return s.state.ClearPending(ctx, phone)
}

// InvalidateVerification снимает флаг подтверждения телефона.
func (s *OTPService) InvalidateVerification(ctx context.Context, phone string) error {
	return s.state.ClearVerified(ctx, phone)
}
