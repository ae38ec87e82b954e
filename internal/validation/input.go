package validation

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ignatzorin/brandlink-backend/internal/models"
)

// Константы валидации
const (
	MinPhoneDigits     = 6
	MaxPhoneDigits     = 15
	MaxBrandNameLength = 100
)

var phoneRegex = regexp.MustCompile(`^\+?\d+$`)

// Сообщения об ошибках для клиента.
var (
	ErrPhoneRequired       = errors.New("Enter your phone number")
	ErrPhoneInvalid        = errors.New("Enter a valid mobile number")
	ErrOTPRequired         = errors.New("Phone number and OTP are required")
	ErrDateOfBirthRequired = errors.New("Enter your date of birth")
	ErrDateOfBirthInvalid  = errors.New("Enter a valid date of birth")
	ErrGenderInvalid       = errors.New("Select your gender")
	ErrBrandNameRequired   = errors.New("Brand name is required and must be a string")
	ErrBrandNameTooLong    = errors.New("Brand name is too long")
)

// NormalizePhone убирает пробелы и ведущий "+": в хранилище телефон хранится цифрами.
func NormalizePhone(phone string) string {
	return strings.TrimPrefix(strings.TrimSpace(phone), "+")
}

// ValidatePhone проверяет, что телефон состоит из цифр (допускается ведущий "+").
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneRequired
	}
	if !phoneRegex.MatchString(phone) {
		return ErrPhoneInvalid
	}
	digits := len(strings.TrimPrefix(phone, "+"))
	if digits < MinPhoneDigits || digits > MaxPhoneDigits {
		return ErrPhoneInvalid
	}
	return nil
}

// ParseDateOfBirth принимает дату в формате 2006-01-02 или RFC3339.
func ParseDateOfBirth(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrDateOfBirthRequired
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			if t.After(time.Now()) {
				return time.Time{}, ErrDateOfBirthInvalid
			}
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrDateOfBirthInvalid
}

// ValidateGender проверяет, что пол один из допустимых.
func ValidateGender(gender string) error {
	if _, ok := models.ValidGenders[gender]; !ok {
		return ErrGenderInvalid
	}
	return nil
}

// ValidateBrandName проверяет имя бренда.
func ValidateBrandName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBrandNameRequired
	}
	if utf8.RuneCountInString(name) > MaxBrandNameLength {
		return ErrBrandNameTooLong
	}
	return nil
}
