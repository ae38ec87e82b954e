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

// ProfileRepository описывает зависимости ProfileService от хранилища пользователей.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BrandLister возвращает бренды пользователя.
type BrandLister interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Brand, error)
}

// UpdateProfileInput поля частичного обновления. nil означает "не менять".
type UpdateProfileInput struct {
	Phone       *string
	Gender      *string
	DateOfBirth *string
}

// ProfileService отдаёт и изменяет профиль текущего пользователя.
type ProfileService struct {
	users  ProfileRepository
	brands BrandLister
}

// NewProfileService создаёт сервис профиля.
func NewProfileService(users ProfileRepository, brands BrandLister) *ProfileService {
	return &ProfileService{users: users, brands: brands}
}

// Get возвращает профиль без пароля вместе с брендами.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserError(err)
	}

	brands, err := s.brands.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.Profile{User: user, Brands: brands}, nil
}

// Update применяет частичное обновление профиля.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	var upd models.UserUpdate

	if in.Phone != nil && strings.TrimSpace(*in.Phone) != "" {
		if err := validation.ValidatePhone(*in.Phone); err != nil {
			return nil, apperror.Validation(err.Error())
		}
		phone := validation.NormalizePhone(*in.Phone)
		upd.Phone = &phone
	}
	if in.Gender != nil && *in.Gender != "" {
		if err := validation.ValidateGender(*in.Gender); err != nil {
			return nil, apperror.Validation(err.Error())
		}
		upd.Gender = in.Gender
	}
	if in.DateOfBirth != nil && strings.TrimSpace(*in.DateOfBirth) != "" {
		dob, err := validation.ParseDateOfBirth(*in.DateOfBirth)
		if err != nil {
			return nil, apperror.Validation(err.Error())
		}
		upd.DateOfBirth = &dob
	}

	if upd.Empty() {
		return nil, apperror.ErrNoFieldsToUpdate
	}

	user, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		return nil, mapUserError(err)
	}
	return user, nil
}

// Delete удаляет аккаунт вместе с брендами и каналами.
func (s *ProfileService) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return mapUserError(err)
	}
	return nil
}

func mapUserError(err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return apperror.ErrUserNotFound
	case errors.Is(err, repository.ErrPhoneTaken):
		return apperror.ErrPhoneAlreadyTaken
	default:
		return err
	}
}
