package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/brandlink-backend/internal/logger"
	"github.com/ignatzorin/brandlink-backend/internal/metrics"
	"github.com/ignatzorin/brandlink-backend/internal/models"
	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/brandlink-backend/internal/repository"
	"github.com/ignatzorin/brandlink-backend/internal/validation"
)

// PasswordCost стоимость bcrypt для паролей пользователей.
const PasswordCost = 10

// RegistrationUserRepository описывает зависимости регистрации от хранилища пользователей.
type RegistrationUserRepository interface {
	Create(ctx context.Context, user *models.User) error
}

// PhoneVerifier операции OTP, нужные регистрации.
type PhoneVerifier interface {
	Issue(ctx context.Context, phone string) error
	Verify(ctx context.Context, phone, code string) (bool, error)
	IsVerified(ctx context.Context, phone string) (bool, error)
	TTLRemaining(ctx context.Context, phone string) (time.Duration, bool, error)
	Invalidate(ctx context.Context, phone string) error
	InvalidateVerification(ctx context.Context, phone string) error
}

// RegisterInput тело запроса регистрации для любого шага.
type RegisterInput struct {
	Step        string
	Phone       string
	OTP         string
	Password    string
	DateOfBirth string
	Gender      string
}

// RegisterResult ответ шага регистрации.
type RegisterResult struct {
	HTTPStatus int          `json:"-"`
	Message    string       `json:"message"`
	Step       string       `json:"step,omitempty"`
	ExpiresIn  int64        `json:"expiresIn,omitempty"`
	User       *models.User `json:"user,omitempty"`
}

// RegistrationService ведёт пользователя по шагам send_otp, verify_otp, complete_registration.
type RegistrationService struct {
	users           RegistrationUserRepository
	otp             PhoneVerifier
	requireVerified bool
	metrics         *metrics.Metrics
}

// NewRegistrationService создаёт сервис регистрации.
// requireVerified=false разрешает complete_registration без подтверждённого телефона.
func NewRegistrationService(users RegistrationUserRepository, otp PhoneVerifier, requireVerified bool, m *metrics.Metrics) *RegistrationService {
	return &RegistrationService{
		users:           users,
		otp:             otp,
		requireVerified: requireVerified,
		metrics:         m,
	}
}

// Register выполняет один шаг регистрации.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	switch in.Step {
	case models.StepSendOTP:
		return s.sendOTP(ctx, in.Phone)
	case models.StepVerifyOTP:
		return s.verifyOTP(ctx, in.Phone, in.OTP)
	case models.StepCompleteRegistration:
		return s.complete(ctx, in)
	default:
		return nil, apperror.ErrInvalidStep
	}
}

func (s *RegistrationService) sendOTP(ctx context.Context, rawPhone string) (*RegisterResult, error) {
	if strings.TrimSpace(rawPhone) == "" {
		return nil, apperror.Validation("Phone number is required")
	}
	if err := validation.ValidatePhone(rawPhone); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	phone := validation.NormalizePhone(rawPhone)

	if err := s.otp.Issue(ctx, phone); err != nil {
		return nil, err
	}

	res := &RegisterResult{
		HTTPStatus: http.StatusOK,
		Message:    "OTP sent successfully",
		Step:       models.StepVerifyOTP,
	}
	if ttl, ok, err := s.otp.TTLRemaining(ctx, phone); err == nil && ok {
		res.ExpiresIn = int64(ttl.Seconds())
	}
	return res, nil
}

func (s *RegistrationService) verifyOTP(ctx context.Context, rawPhone, code string) (*RegisterResult, error) {
	if strings.TrimSpace(rawPhone) == "" || strings.TrimSpace(code) == "" {
		return nil, apperror.Validation(validation.ErrOTPRequired.Error())
	}
	phone := validation.NormalizePhone(rawPhone)

	ok, err := s.otp.Verify(ctx, phone, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.ErrInvalidOTP
	}

	return &RegisterResult{
		HTTPStatus: http.StatusOK,
		Message:    "Phone number verified successfully",
		Step:       models.StepCompleteRegistration,
	}, nil
}

func (s *RegistrationService) complete(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if err := validation.ValidatePhone(in.Phone); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	dob, err := validation.ParseDateOfBirth(in.DateOfBirth)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateGender(in.Gender); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	phone := validation.NormalizePhone(in.Phone)

	if s.requireVerified {
		verified, err := s.otp.IsVerified(ctx, phone)
		if err != nil {
			return nil, err
		}
		if !verified {
			s.metrics.ObserveRegistration("not_verified")
			return nil, apperror.ErrPhoneNotVerified
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("registration service: не удалось захешировать пароль: %w", err)
	}

	user := &models.User{
		Phone:        phone,
		PasswordHash: string(hash),
		DateOfBirth:  dob,
		Gender:       in.Gender,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrPhoneTaken) {
			s.metrics.ObserveRegistration("duplicate")
			return nil, apperror.ErrPhoneAlreadyTaken
		}
		s.metrics.ObserveRegistration("error")
		return nil, err
	}

	// Подтверждение одноразовое: повторная регистрация потребует нового кода.
	if err := s.otp.InvalidateVerification(ctx, phone); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("registration service: не удалось снять флаг подтверждения")
	}
	if err := s.otp.Invalidate(ctx, phone); err != nil {
		logger.Log.WithField("error", err.Error()).Warn("registration service: не удалось удалить выданный код")
	}

	s.metrics.ObserveRegistration("created")
	return &RegisterResult{
		HTTPStatus: http.StatusCreated,
		Message:    "Your account has been created successfully!",
		User:       user,
	}, nil
}
