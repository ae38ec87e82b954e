package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/brandlink-backend/internal/logger"
	"github.com/ignatzorin/brandlink-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// AppError отдаёт свой статус и сообщение, остальные ошибки маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		statusCode := http.StatusInternalServerError
		message := apperror.GenericMessage

		if appErr, ok := apperror.As(err); ok {
			statusCode = appErr.HTTPStatus
			message = appErr.Message
		}

		entry := logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"status": statusCode,
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
		if statusCode >= http.StatusInternalServerError {
			entry.Error("Request error")
		} else {
			entry.Info("Request rejected")
		}

		c.JSON(statusCode, gin.H{"error": message})
	}
}
