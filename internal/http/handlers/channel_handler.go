package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/brandlink-backend/internal/dto"
	"github.com/ignatzorin/brandlink-backend/internal/http/handlers/common"
	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/brandlink-backend/internal/service"
)

// ChannelHandler каналы активного бренда.
type ChannelHandler struct {
	channels *service.ChannelService
}

// NewChannelHandler создаёт хэндлер каналов.
func NewChannelHandler(channels *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

// List обрабатывает GET /api/v1/channel и GET /api/v1/app.
func (h *ChannelHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	list, err := h.channels.List(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondOK(c, list)
}

// UpdateToken обрабатывает PUT /api/v1/channel.
func (h *ChannelHandler) UpdateToken(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.UpdateChannelRequest
	if err := common.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	channelID, err := parseChannelID(req.ChannelID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ch, err := h.channels.UpdateToken(c.Request.Context(), userID, channelID, req.AccessToken)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ChannelResponse{Message: "Channel updated successfully", Channel: ch})
}

// Delete обрабатывает DELETE /api/v1/channel.
func (h *ChannelHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.DeleteChannelRequest
	if err := common.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	channelID, err := parseChannelID(req.ChannelID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.channels.Delete(c.Request.Context(), userID, channelID); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondMessage(c, http.StatusOK, "Channel deleted successfully")
}

// parseChannelID пустой ID оставляет uuid.Nil, чтобы сервис вернул ошибку обязательного поля.
func parseChannelID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	return common.ParseID(raw, apperror.ErrChannelNotFound)
}
