package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/brandlink-backend/internal/models"
	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/brandlink-backend/internal/repository"
	"github.com/ignatzorin/brandlink-backend/internal/validation"
)

// BrandRepository описывает зависимости BrandService от хранилища.
type BrandRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Brand, error)
	Create(ctx context.Context, brand *models.Brand) (bool, error)
	UpdateName(ctx context.Context, id, ownerID uuid.UUID, name string) (*models.Brand, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	SetActive(ctx context.Context, userID, brandID uuid.UUID) error
	GetActive(ctx context.Context, userID uuid.UUID) (*models.Brand, error)
}

// BrandService управляет брендами пользователя и выбором активного бренда.
type BrandService struct {
	repo     BrandRepository
	notifier Notifier
}

// CreateBrandResult новый бренд и признак того, что он стал активным.
type CreateBrandResult struct {
	Brand  *models.Brand `json:"brand"`
	Active bool          `json:"active"`
}

// NewBrandService создаёт сервис брендов.
func NewBrandService(repo BrandRepository, notifier Notifier) *BrandService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &BrandService{repo: repo, notifier: notifier}
}

// List возвращает бренды владельца.
func (s *BrandService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Brand, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Create создаёт бренд. Первый бренд пользователя становится активным.
func (s *BrandService) Create(ctx context.Context, ownerID uuid.UUID, name string) (*CreateBrandResult, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateBrandName(name); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	brand := &models.Brand{Name: name, OwnerID: ownerID}
	activated, err := s.repo.Create(ctx, brand)
	if err != nil {
		return nil, mapBrandError(err)
	}

	if activated {
		notify(s.notifier, ownerID, EventBrandSelected, map[string]interface{}{"brandId": brand.ID})
	}
	return &CreateBrandResult{Brand: brand, Active: activated}, nil
}

// Rename меняет имя бренда. Чужой бренд неотличим от несуществующего.
func (s *BrandService) Rename(ctx context.Context, ownerID, brandID uuid.UUID, name string) (*models.Brand, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateBrandName(name); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	brand, err := s.repo.UpdateName(ctx, brandID, ownerID, name)
	if err != nil {
		return nil, mapBrandError(err)
	}
	return brand, nil
}

// Delete удаляет бренд владельца вместе с каналами.
func (s *BrandService) Delete(ctx context.Context, ownerID, brandID uuid.UUID) error {
	if err := s.repo.Delete(ctx, brandID, ownerID); err != nil {
		return mapBrandError(err)
	}
	return nil
}

// Select делает бренд активным.
func (s *BrandService) Select(ctx context.Context, ownerID, brandID uuid.UUID) error {
	if err := s.repo.SetActive(ctx, ownerID, brandID); err != nil {
		if errors.Is(err, repository.ErrBrandNotFound) {
			return apperror.ErrBrandNotOwned
		}
		return err
	}

	notify(s.notifier, ownerID, EventBrandSelected, map[string]interface{}{"brandId": brandID})
	return nil
}

// Active возвращает активный бренд пользователя.
func (s *BrandService) Active(ctx context.Context, userID uuid.UUID) (*models.Brand, error) {
	brand, err := s.repo.GetActive(ctx, userID)
	if err != nil {
		return nil, mapBrandError(err)
	}
	return brand, nil
}

func mapBrandError(err error) error {
	switch {
	case errors.Is(err, repository.ErrBrandNotFound):
		return apperror.ErrBrandNotFound
	case errors.Is(err, repository.ErrBrandNameTaken):
		return apperror.ErrBrandNameTaken
	case errors.Is(err, repository.ErrNoActiveBrand):
		return apperror.ErrNoActiveBrand
	default:
		return err
	}
}
