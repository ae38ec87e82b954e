package dto

import (
	"github.com/ignatzorin/brandlink-backend/internal/models"
	"github.com/ignatzorin/brandlink-backend/internal/service"
)

// ErrorResponse единый формат ошибки.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse ответ с сообщением без данных.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse ответ входа.
type LoginResponse struct {
	User   *models.User       `json:"user"`
	Tokens *service.TokenPair `json:"tokens"`
}

// TokensResponse ответ обновления токенов.
type TokensResponse struct {
	Tokens *service.TokenPair `json:"tokens"`
}

// BrandResponse ответ создания и изменения бренда.
type BrandResponse struct {
	Message string        `json:"message"`
	Brand   *models.Brand `json:"brand"`
	Active  bool          `json:"active,omitempty"`
}

// ProfileUpdateResponse ответ PUT /user.
type ProfileUpdateResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// ChannelResponse ответ PUT /channel.
type ChannelResponse struct {
	Message string          `json:"message"`
	Channel *models.Channel `json:"channel"`
}

// OAuthURLResponse адрес диалога авторизации провайдера.
type OAuthURLResponse struct {
	OAuthURL string `json:"oauth_url"`
}
