package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/brandlink-backend/internal/dto"
	"github.com/ignatzorin/brandlink-backend/internal/http/handlers/common"
	"github.com/ignatzorin/brandlink-backend/internal/http/middleware"
	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/brandlink-backend/internal/service"
)

// AuthHandler предоставляет HTTP слой для входа и ротации токенов.
type AuthHandler struct {
	auth         *service.AuthService
	secureCookie bool
}

// NewAuthHandler создаёт хэндлер. secureCookie включает флаг Secure у cookie токена.
func NewAuthHandler(auth *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookie: secureCookie}
}

// Login обрабатывает POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := common.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Phone:    strings.TrimSpace(req.Phone),
		Password: req.Password,
	}, common.SessionMeta(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setAccessCookie(c, result.TokenPair)
	c.JSON(http.StatusOK, dto.LoginResponse{User: result.User, Tokens: result.TokenPair})
}

// Refresh обрабатывает POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := common.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.RefreshToken == "" {
		_ = c.Error(apperror.ErrInvalidRefresh)
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, common.SessionMeta(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setAccessCookie(c, pair)
	c.JSON(http.StatusOK, dto.TokensResponse{Tokens: pair})
}

// Logout обрабатывает POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshRequest
	// Тело необязательно: без него просто удаляется cookie
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
			_ = c.Error(err)
			return
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessCookieName, "", -1, "/", "", h.secureCookie, true)
	common.RespondMessage(c, http.StatusOK, "Logged out successfully")
}

// ListSessions обрабатывает GET /api/v1/user/sessions.
func (h *AuthHandler) ListSessions(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	sessions, err := h.auth.ListSessions(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// DeleteSession обрабатывает DELETE /api/v1/user/sessions/:id.
func (h *AuthHandler) DeleteSession(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// Формат id уже проверен UUIDValidator
	sessionID, err := common.ParseID(c.Param("id"), apperror.New(apperror.ErrCodeNotFound, "Session not found"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.auth.DeleteSession(c.Request.Context(), sessionID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondMessage(c, http.StatusOK, "Session deleted successfully")
}

// setAccessCookie кладёт access токен в HttpOnly cookie для редиректа OAuth.
func (h *AuthHandler) setAccessCookie(c *gin.Context, pair *service.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessCookieName, pair.AccessToken, int(pair.ExpiresIn), "/", "", h.secureCookie, true)
}
