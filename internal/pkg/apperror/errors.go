package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest          ErrorCode = "BAD_REQUEST"
	ErrCodeConflict            ErrorCode = "CONFLICT"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation          ErrorCode = "VALIDATION_ERROR"
	ErrCodeProviderError       ErrorCode = "PROVIDER_ERROR"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
)

// GenericMessage сообщение клиенту для всех непредвиденных ошибок.
const GenericMessage = "Something went wrong. Please try again."

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы обёрнутый sentinel
// находился через errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation создаёт ошибку валидации с сообщением для клиента.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeProviderError:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// As извлекает AppError из цепочки ошибок.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeConflict
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

var (
	ErrUnauthorized       = New(ErrCodeUnauthorized, "Unauthorized")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "Incorrect phone number or password")
	ErrInvalidRefresh     = New(ErrCodeUnauthorized, "Invalid refresh token")
	ErrUserNotFound       = New(ErrCodeNotFound, "User not found")

	ErrInvalidStep       = New(ErrCodeBadRequest, "Invalid step")
	ErrInvalidOTP        = New(ErrCodeBadRequest, "Invalid or expired OTP")
	ErrPhoneNotVerified  = New(ErrCodeBadRequest, "Phone number not verified. Please verify with OTP first.")
	ErrPhoneAlreadyTaken = New(ErrCodeConflict, "Phone number already registered")
	ErrNoFieldsToUpdate  = New(ErrCodeBadRequest, "No valid fields to update")
	ErrOTPDeliveryFailed = New(ErrCodeProviderError, "Failed to send OTP")
	ErrSMSProviderDown   = New(ErrCodeProviderUnavailable, "SMS provider is unavailable")

	ErrBrandNotFound   = New(ErrCodeNotFound, "Brand not found")
	ErrBrandNotOwned   = New(ErrCodeNotFound, "Brand not found or unauthorized")
	ErrBrandNameTaken  = New(ErrCodeConflict, "Brand with this name already exists")
	ErrNoActiveBrand   = New(ErrCodeBadRequest, "No active brand found for the user")
	ErrChannelNotFound = New(ErrCodeNotFound, "Channel not found")

	ErrPlatformRequired    = New(ErrCodeBadRequest, "Platform is required")
	ErrUnsupportedPlatform = New(ErrCodeBadRequest, "Unsupported platform")
	ErrCodeRequired        = New(ErrCodeBadRequest, "Authorization code is required")
	ErrTokenExchange       = New(ErrCodeProviderError, "Failed to retrieve access token")
	ErrProviderResponse    = New(ErrCodeProviderUnavailable, "Provider returned an unexpected response")
)
