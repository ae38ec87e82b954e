package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/brandlink-backend/internal/logger"
	"github.com/ignatzorin/brandlink-backend/internal/models"
	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/brandlink-backend/internal/repository"
)

// ChannelRepository описывает зависимости ChannelService от хранилища.
type ChannelRepository interface {
	ListByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Channel, error)
	GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Channel, error)
	UpdateToken(ctx context.Context, id, ownerID uuid.UUID, token string) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

// PagesFetcher получает страницы Facebook по токену привязанного аккаунта.
type PagesFetcher interface {
	Pages(ctx context.Context, accessToken string) ([]models.Page, error)
}

// ChannelService работает с каналами активного бренда.
type ChannelService struct {
	channels ChannelRepository
	brands   ActiveBrandResolver
	pages    PagesFetcher
	notifier Notifier

	cache    *CacheService
	cacheTTL time.Duration
}

// NewChannelService создаёт сервис каналов.
func NewChannelService(channels ChannelRepository, brands ActiveBrandResolver, pages PagesFetcher, notifier Notifier) *ChannelService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ChannelService{
		channels: channels,
		brands:   brands,
		pages:    pages,
		notifier: notifier,
	}
}

// WithPagesCache включает кэширование страниц Facebook на ttl. Нулевой ttl отключает кэш.
func (s *ChannelService) WithPagesCache(cache *CacheService, ttl time.Duration) *ChannelService {
	if cache != nil && ttl > 0 {
		s.cache = cache
		s.cacheTTL = ttl
	}
	return s
}

// List возвращает каналы активного бренда и страницы привязанного Facebook аккаунта.
// Ошибка Graph API не мешает вернуть сами каналы.
func (s *ChannelService) List(ctx context.Context, userID uuid.UUID) (*models.ChannelList, error) {
	brand, err := s.brands.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveBrand) {
			return nil, apperror.ErrNoActiveBrand
		}
		return nil, err
	}

	channels, err := s.channels.ListByBrand(ctx, brand.ID)
	if err != nil {
		return nil, err
	}

	result := &models.ChannelList{Channels: channels, Pages: []models.Page{}}
	for _, ch := range channels {
		if ch.Platform != models.PlatformFacebook || ch.AccessToken == "" {
			continue
		}
		pages, err := s.fetchPages(ctx, ch)
		if err != nil {
			logger.Log.WithFields(logrus.Fields{
				"channel_id": ch.ID,
				"error":      err.Error(),
			}).Warn("channel service: не удалось получить страницы Facebook")
			break
		}
		result.Pages = pages
		break
	}

	return result, nil
}

// UpdateToken заменяет токен доступа канала.
func (s *ChannelService) UpdateToken(ctx context.Context, userID, channelID uuid.UUID, token string) (*models.Channel, error) {
	token = strings.TrimSpace(token)
	if channelID == uuid.Nil || token == "" {
		return nil, apperror.Validation("Missing required fields")
	}

	if err := s.channels.UpdateToken(ctx, channelID, userID, token); err != nil {
		return nil, mapChannelError(err)
	}
	s.invalidatePages(channelID)

	ch, err := s.channels.GetOwned(ctx, channelID, userID)
	if err != nil {
		return nil, mapChannelError(err)
	}
	return ch, nil
}

// Delete удаляет канал.
func (s *ChannelService) Delete(ctx context.Context, userID, channelID uuid.UUID) error {
	if channelID == uuid.Nil {
		return apperror.Validation("Missing channel ID")
	}

	if err := s.channels.Delete(ctx, channelID, userID); err != nil {
		return mapChannelError(err)
	}
	s.invalidatePages(channelID)

	notify(s.notifier, userID, EventChannelDeleted, map[string]interface{}{"channelId": channelID})
	return nil
}

func (s *ChannelService) fetchPages(ctx context.Context, ch models.Channel) ([]models.Page, error) {
	if s.cache == nil {
		return s.pages.Pages(ctx, ch.AccessToken)
	}

	value, err := s.cache.GetOrSet(ctx, PagesCacheKey(ch.ID), s.cacheTTL, func(ctx context.Context) (interface{}, error) {
		return s.pages.Pages(ctx, ch.AccessToken)
	})
	if err != nil {
		return nil, err
	}
	pages, _ := value.([]models.Page)
	return pages, nil
}

func (s *ChannelService) invalidatePages(channelID uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateChannel(channelID)
	}
}

func mapChannelError(err error) error {
	if errors.Is(err, repository.ErrChannelNotFound) {
		return apperror.ErrChannelNotFound
	}
	return err
}
