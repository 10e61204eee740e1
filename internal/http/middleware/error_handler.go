package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/logger"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
)

// ErrorHandler единственная точка перевода ошибок в HTTP ответ.
// Внутренние ошибки логируются, а их текст отдаётся только при exposeInternal.
func ErrorHandler(exposeInternal bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) || appErr.Code == apperror.ErrCodeInternal {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		response.Error(c, err, exposeInternal)
	}
}
