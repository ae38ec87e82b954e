package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel привязанный к бренду аккаунт социальной сети.
type Channel struct {
	ID                uuid.UUID `db:"id" json:"id"`
	BrandID           uuid.UUID `db:"brand_id" json:"brandId"`
	Platform          string    `db:"platform" json:"platform"`
	ExternalAccountID string    `db:"external_account_id" json:"externalAccountId"`
	AccessToken       string    `db:"access_token" json:"-"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// Page страница Facebook, доступная привязанному аккаунту.
type Page struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// ChannelList ответ GET /channel.
type ChannelList struct {
	Channels []Channel `json:"channels"`
	Pages    []Page    `json:"facebookPages"`
}
