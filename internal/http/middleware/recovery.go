package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/logger"
)

// Recovery перехватывает панику обработчика и отвечает 500 в общем формате.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Log.WithFields(logrus.Fields{
			"panic":  recovered,
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("panic in handler")
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Success: false,
			Message: "внутренняя ошибка сервера",
		})
	})
}
