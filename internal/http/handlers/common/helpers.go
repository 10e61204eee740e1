package common

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/preloved-backend/internal/http/middleware"
	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/service"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage держит смещение в пределах int32 при любом limit.
	MaxPage = math.MaxInt32 / MaxLimit
)

// Pagination параметры страницы из строки запроса.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// Fetch сколько записей запросить: на одну больше, чтобы узнать про следующую страницу.
func (p Pagination) Fetch() int {
	return p.Limit + 1
}

// Fail передаёт ошибку в middleware.ErrorHandler.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// CurrentUser возвращает пользователя запроса или пишет 401.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Fail(c, apperror.ErrUnauthorized)
		return nil, false
	}
	return user, true
}

// Actor текущий пользователь в виде участника операции.
func Actor(c *gin.Context) (service.Actor, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: user.ID, IsAdmin: user.IsAdmin}, true
}

// OptionalActor пользователь, если запрос авторизован.
func OptionalActor(c *gin.Context) *service.Actor {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return &service.Actor{ID: user.ID, IsAdmin: user.IsAdmin}
}

// UUIDParam разбирает параметр пути. Формат обычно уже проверен UUIDValidator.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		Fail(c, apperror.Validation([]apperror.FieldError{{Field: name, Message: "должен быть валидным UUID"}}))
		return uuid.Nil, false
	}
	return id, true
}

// ParseIntQuery читает целое из строки запроса, при ошибке возвращает fallback.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetPagination читает page и limit с ограничениями по умолчанию.
func GetPagination(c *gin.Context) Pagination {
	page := ParseIntQuery(c, "page", 1)
	limit := ParseIntQuery(c, "limit", DefaultLimit)
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// SessionMeta сведения о клиенте для новой сессии.
func SessionMeta(c *gin.Context) service.SessionMeta {
	return service.SessionMeta{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}
