package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/brandlink-backend/internal/dto"
	"github.com/ignatzorin/brandlink-backend/internal/http/handlers/common"
	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/brandlink-backend/internal/service"
)

var errAuthorizationDenied = apperror.New(apperror.ErrCodeBadRequest, "Authorization was denied")

// ConnectHandler привязка аккаунтов Facebook и Instagram.
type ConnectHandler struct {
	connect *service.ConnectService
}

// NewConnectHandler создаёт хэндлер привязки.
func NewConnectHandler(connect *service.ConnectService) *ConnectHandler {
	return &ConnectHandler{connect: connect}
}

// Connect обрабатывает GET /api/v1/connect.
// Без code и state возвращает адрес авторизации, иначе обрабатывает callback.
// Платформа приходит в platform либо возвращается провайдером в state.
func (h *ConnectHandler) Connect(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	platform := c.Query("platform")
	if platform == "" {
		platform = state
	}

	if c.Query("error") != "" {
		_ = c.Error(errAuthorizationDenied)
		return
	}

	if code == "" && state == "" {
		url, err := h.connect.AuthorizationURL(platform)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, dto.OAuthURLResponse{OAuthURL: url})
		return
	}

	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.connect.HandleCallback(c.Request.Context(), userID, platform, code)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, res)
}
