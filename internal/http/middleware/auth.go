package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/repository"
	"github.com/ignatzorin/preloved-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextUserKey   = "user"
)

// TokenParser проверяет access токены.
type TokenParser interface {
	ParseAccess(token string) (uuid.UUID, *service.AccessClaims, error)
}

// UserLoader загружает пользователя по идентификатору из токена.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthRequired пропускает только активных пользователей с валидным access токеном.
func AuthRequired(tokens TokenParser, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, tokens, users)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// AuthOptional прикрепляет пользователя, если токен валиден, и не блокирует запрос.
func AuthOptional(tokens TokenParser, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := authenticate(c, tokens, users); err == nil {
			setUser(c, user)
		}
		c.Next()
	}
}

// AdminOnly ставится после AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			_ = c.Error(apperror.ErrUnauthorized)
			c.Abort()
			return
		}
		if !user.IsAdmin {
			_ = c.Error(apperror.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser возвращает пользователя, прикреплённого auth middleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	raw, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := raw.(*models.User)
	return user, ok && user != nil
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(ContextUserIDKey, user.ID)
	c.Set(ContextUserKey, user)
}

func authenticate(c *gin.Context, tokens TokenParser, users UserLoader) (*models.User, error) {
	raw := bearerToken(c)
	if raw == "" {
		return nil, apperror.ErrUnauthorized
	}

	userID, _, err := tokens.ParseAccess(raw)
	if err != nil || userID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "токен невалиден")
	}

	user, err := users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, apperror.Internal(err)
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}
	return user, nil
}

// bearerToken берёт токен из заголовка. Браузер не может передать заголовок
// при открытии websocket, поэтому для upgrade запросов допускается ?token=.
func bearerToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("token")
	}
	return ""
}
