package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
)

// UUIDValidator проверяет, что параметры пути являются валидными UUID.
// Использование: group.GET("/:id", UUIDValidator("id"), handler.Get)
func UUIDValidator(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields []apperror.FieldError
		for _, name := range paramNames {
			if _, err := uuid.Parse(c.Param(name)); err != nil {
				fields = append(fields, apperror.FieldError{Field: name, Message: "должен быть валидным UUID"})
			}
		}
		if len(fields) > 0 {
			_ = c.Error(apperror.Validation(fields))
			c.Abort()
			return
		}
		c.Next()
	}
}
