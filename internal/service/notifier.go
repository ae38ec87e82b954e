package service

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/brandlink-backend/internal/logger"
)

// События, отправляемые в открытые сокеты пользователя.
const (
	EventChannelLinked  = "channel.linked"
	EventChannelDeleted = "channel.deleted"
	EventBrandSelected  = "brand.selected"
)

// Notifier доставляет события пользователю в реальном времени.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

type noopNotifier struct{}

func (noopNotifier) BroadcastToUser(uuid.UUID, string, any) error { return nil }

// notify отправляет событие. Ошибка доставки не влияет на результат операции.
func notify(n Notifier, userID uuid.UUID, event string, data any) {
	if err := n.BroadcastToUser(userID, event, data); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"event":   event,
			"error":   err.Error(),
		}).Warn("service: не удалось отправить событие")
	}
}
