package validation

import "errors"

// MinPasswordLength минимальная длина пароля.
const MinPasswordLength = 6

var (
	ErrPasswordRequired = errors.New("Enter your password")
	ErrPasswordTooShort = errors.New("Passwords must be at least 6 characters")
)

// ValidatePassword проверяет пароль при регистрации.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
