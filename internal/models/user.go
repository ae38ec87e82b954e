package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает зарегистрированного по телефону пользователя.
type User struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Phone         string     `db:"phone" json:"phone"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	DateOfBirth   time.Time  `db:"date_of_birth" json:"dateOfBirth"`
	Gender        string     `db:"gender" json:"gender"`
	ActiveBrandID *uuid.UUID `db:"active_brand_id" json:"activeBrandId,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// UserUpdate частичное обновление профиля. nil поля не меняются.
type UserUpdate struct {
	Phone       *string
	Gender      *string
	DateOfBirth *time.Time
}

// Empty сообщает, что в обновлении нет ни одного поля.
func (u UserUpdate) Empty() bool {
	return u.Phone == nil && u.Gender == nil && u.DateOfBirth == nil
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"userId"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	UserAgent    *string   `db:"user_agent" json:"userAgent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ipAddress,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Profile ответ GET /user: пользователь без пароля и его бренды.
type Profile struct {
	*User
	Brands []Brand `json:"brands"`
}
