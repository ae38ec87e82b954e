package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/brandlink-backend/internal/dto"
	"github.com/ignatzorin/brandlink-backend/internal/http/middleware"
	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/brandlink-backend/internal/service"
)

// ErrInvalidBody тело запроса не является корректным JSON.
var ErrInvalidBody = apperror.Validation("Invalid request body")

// CurrentUserID извлекает ID пользователя, положенный AuthMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, ok := raw.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// BindJSON разбирает тело запроса. Ошибка разбора отдаётся клиенту как 400.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, ErrInvalidBody.Message)
	}
	return nil
}

// ParseID разбирает UUID из тела или query. Некорректный ID считается
// ссылкой на несуществующую сущность.
func ParseID(raw string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// SessionMeta сведения о клиенте для сессии.
func SessionMeta(c *gin.Context) service.SessionMeta {
	return service.SessionMeta{
		UserAgent: c.GetHeader("User-Agent"),
		IP:        c.ClientIP(),
	}
}

// RespondMessage отправляет ответ с одним сообщением.
func RespondMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.MessageResponse{Message: message})
}

// RespondOK отправляет 200 с данными.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
