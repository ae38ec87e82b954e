package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/ignatzorin/brandlink-backend/internal/graph"
	"github.com/ignatzorin/brandlink-backend/internal/logger"
	"github.com/ignatzorin/brandlink-backend/internal/metrics"
	"github.com/ignatzorin/brandlink-backend/internal/models"
	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/brandlink-backend/internal/repository"
)

// OAuthProvider авторизация и обмен кода у провайдера социальной сети.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	AccountID(ctx context.Context, accessToken string) (string, error)
}

// ActiveBrandResolver возвращает активный бренд пользователя.
type ActiveBrandResolver interface {
	GetActive(ctx context.Context, userID uuid.UUID) (*models.Brand, error)
}

// ChannelUpserter сохраняет привязанный канал.
type ChannelUpserter interface {
	Upsert(ctx context.Context, ch *models.Channel) error
}

// LinkResult итог успешной привязки аккаунта.
type LinkResult struct {
	Success           bool   `json:"success"`
	ExternalAccountID string `json:"externalAccountId"`
	Platform          string `json:"platform"`
}

// ConnectService строит адрес авторизации и обрабатывает callback провайдера.
type ConnectService struct {
	provider OAuthProvider
	brands   ActiveBrandResolver
	channels ChannelUpserter
	notifier Notifier
	metrics  *metrics.Metrics
}

// NewConnectService создаёт сервис привязки каналов.
func NewConnectService(provider OAuthProvider, brands ActiveBrandResolver, channels ChannelUpserter, notifier Notifier, m *metrics.Metrics) *ConnectService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ConnectService{
		provider: provider,
		brands:   brands,
		channels: channels,
		notifier: notifier,
		metrics:  m,
	}
}

// AuthorizationURL возвращает адрес диалога авторизации для платформы.
func (s *ConnectService) AuthorizationURL(platform string) (string, error) {
	p, err := normalizePlatform(platform)
	if err != nil {
		return "", err
	}
	return s.provider.AuthCodeURL(p), nil
}

// HandleCallback привязывает аккаунт к активному бренду пользователя.
// Авторизация и активный бренд проверяются до обращения к провайдеру,
// поэтому без них код не тратится.
func (s *ConnectService) HandleCallback(ctx context.Context, userID uuid.UUID, platform, code string) (*LinkResult, error) {
	p, err := normalizePlatform(platform)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, apperror.ErrCodeRequired
	}
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	brand, err := s.brands.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveBrand) {
			s.metrics.ObserveChannelLink(p, "no_active_brand")
			return nil, apperror.ErrNoActiveBrand
		}
		return nil, err
	}

	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.logProviderError(userID, p, "exchange", err)
		if errors.Is(err, graph.ErrRejected) {
			s.metrics.ObserveChannelLink(p, "rejected")
			return nil, apperror.Wrap(err, apperror.ErrCodeProviderError, apperror.ErrTokenExchange.Message)
		}
		s.metrics.ObserveChannelLink(p, "provider_unavailable")
		return nil, apperror.Wrap(err, apperror.ErrCodeProviderUnavailable, apperror.ErrProviderResponse.Message)
	}

	accountID, err := s.provider.AccountID(ctx, token.AccessToken)
	if err != nil {
		s.logProviderError(userID, p, "me", err)
		s.metrics.ObserveChannelLink(p, "provider_unavailable")
		return nil, apperror.Wrap(err, apperror.ErrCodeProviderUnavailable, apperror.ErrProviderResponse.Message)
	}

	ch := &models.Channel{
		BrandID:           brand.ID,
		Platform:          p,
		ExternalAccountID: accountID,
		AccessToken:       token.AccessToken,
	}
	if err := s.channels.Upsert(ctx, ch); err != nil {
		s.metrics.ObserveChannelLink(p, "error")
		return nil, err
	}

	s.metrics.ObserveChannelLink(p, "linked")
	notify(s.notifier, userID, EventChannelLinked, ch)

	return &LinkResult{
		Success:           true,
		ExternalAccountID: accountID,
		Platform:          p,
	}, nil
}

func (s *ConnectService) logProviderError(userID uuid.UUID, platform, op string, err error) {
	logger.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"platform": platform,
		"op":       op,
		"error":    err.Error(),
	}).Warn("connect service: ошибка провайдера")
}

// normalizePlatform приводит платформу к нижнему регистру и проверяет поддержку.
func normalizePlatform(platform string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(platform))
	if p == "" {
		return "", apperror.ErrPlatformRequired
	}
	if _, ok := models.ValidPlatforms[p]; !ok {
		return "", apperror.ErrUnsupportedPlatform
	}
	return p, nil
}
