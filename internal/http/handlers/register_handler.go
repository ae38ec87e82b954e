package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/brandlink-backend/internal/dto"
	"github.com/ignatzorin/brandlink-backend/internal/http/handlers/common"
	"github.com/ignatzorin/brandlink-backend/internal/service"
)

// RegisterHandler HTTP слой пошаговой регистрации по телефону.
type RegisterHandler struct {
	registration *service.RegistrationService
}

// NewRegisterHandler создаёт хэндлер.
func NewRegisterHandler(registration *service.RegistrationService) *RegisterHandler {
	return &RegisterHandler{registration: registration}
}

// Register обрабатывает POST /api/auth/register.
func (h *RegisterHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := common.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.registration.Register(c.Request.Context(), service.RegisterInput{
		Step:        req.Step,
		Phone:       req.Phone,
		OTP:         req.OTP,
		Password:    req.Password,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(res.HTTPStatus, res)
}
