// Package sms выпускает и проверяет одноразовые коды подтверждения телефона.
package sms

import (
	"context"
	"errors"
)

var (
	// ErrRejected провайдер отклонил запрос из-за входных данных (номер, код).
	ErrRejected = errors.New("sms: request rejected by provider")
	// ErrUnavailable провайдер недоступен или ответил непредвиденно.
	ErrUnavailable = errors.New("sms: provider unavailable")
)

// Provider выпускает код на телефон и проверяет введённый пользователем код.
// Код хранится только у провайдера.
type Provider interface {
	SendCode(ctx context.Context, phone string) error
	CheckCode(ctx context.Context, phone, code string) (bool, error)
}
