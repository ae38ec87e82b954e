package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpKeyPrefix      = "otp:"
	verifiedKeyPrefix = "verified:"

	otpSentValue     = "sent"
	verifiedValue    = "true"
	defaultOpTimeout = 2 * time.Second
)

// OTPStateRepository хранит состояние подтверждения телефона в Redis.
// Сам код не хранится: его выпускает и проверяет SMS провайдер.
type OTPStateRepository struct {
	client    redis.Cmdable
	opTimeout time.Duration
}

// NewOTPStateRepository создаёт хранилище состояния OTP.
func NewOTPStateRepository(client redis.Cmdable, opTimeout time.Duration) *OTPStateRepository {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &OTPStateRepository{client: client, opTimeout: opTimeout}
}

func otpKey(phone string) string      { return otpKeyPrefix + phone }
func verifiedKey(phone string) string { return verifiedKeyPrefix + phone }

// MarkIssued отмечает, что код отправлен. Повторный вызов перезапускает TTL.
func (r *OTPStateRepository) MarkIssued(ctx context.Context, phone string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if err := r.client.Set(ctx, otpKey(phone), otpSentValue, ttl).Err(); err != nil {
		return fmt.Errorf("otp state repository: mark issued %w", err)
	}
	return nil
}

// HasPending сообщает, есть ли непросроченный выпущенный код.
func (r *OTPStateRepository) HasPending(ctx context.Context, phone string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, otpKey(phone)).Result()
	if err != nil {
		return false, fmt.Errorf("otp state repository: has pending %w", err)
	}
	return n > 0, nil
}

// PendingTTL возвращает оставшееся время жизни выпущенного кода.
// ok=false, если кода нет.
func (r *OTPStateRepository) PendingTTL(ctx context.Context, phone string) (time.Duration, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	ttl, err := r.client.TTL(ctx, otpKey(phone)).Result()
	if err != nil {
		return 0, false, fmt.Errorf("otp state repository: pending ttl %w", err)
	}
	if ttl < 0 {
		return 0, false, nil
	}
	return ttl, true, nil
}

// MarkVerified атомарно ставит флаг подтверждения и удаляет выпущенный код.
func (r *OTPStateRepository) MarkVerified(ctx context.Context, phone string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, verifiedKey(phone), verifiedValue, ttl)
		pipe.Del(ctx, otpKey(phone))
		return nil
	})
	if err != nil {
		return fmt.Errorf("otp state repository: mark verified %w", err)
	}
	return nil
}

// IsVerified сообщает, подтверждён ли телефон.
func (r *OTPStateRepository) IsVerified(ctx context.Context, phone string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	val, err := r.client.Get(ctx, verifiedKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("otp state repository: is verified %w", err)
	}
	return val == verifiedValue, nil
}

// ClearPending удаляет выпущенный код.
func (r *OTPStateRepository) ClearPending(ctx context.Context, phone string) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if err := r.client.Del(ctx, otpKey(phone)).Err(); err != nil {
		return fmt.Errorf("otp state repository: clear pending %w", err)
	}
	return nil
}

// ClearVerified удаляет флаг подтверждения.
func (r *OTPStateRepository) ClearVerified(ctx context.Context, phone string) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if err := r.client.Del(ctx, verifiedKey(phone)).Err(); err != nil {
		return fmt.Errorf("otp state repository: clear verified %w", err)
	}
	return nil
}
