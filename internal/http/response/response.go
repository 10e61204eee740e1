// Package response формирует единый конверт ответов API.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
)

type Response struct {
	Success bool                  `json:"success"`
	Data    interface{}           `json:"data,omitempty"`
	Message string                `json:"message,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

// Page страница списка.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Message ответ без данных.
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

// NewPage собирает страницу. items запрашиваются с запасом в один элемент:
// лишний элемент означает, что есть следующая страница.
func NewPage[T any](items []T, page, limit int) Page[T] {
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: page, Limit: limit, HasMore: hasMore}
}

// Paginated отдаёт страницу, собранную NewPage.
func Paginated[T any](c *gin.Context, items []T, page, limit int) {
	c.JSON(http.StatusOK, Response{Success: true, Data: NewPage(items, page, limit)})
}

// Error пишет ошибку. Сообщение внутренних ошибок выдаётся только при exposeInternal.
func Error(c *gin.Context, err error, exposeInternal bool) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code != apperror.ErrCodeInternal {
		c.JSON(appErr.HTTPStatus, Response{
			Success: false,
			Message: appErr.Message,
			Errors:  appErr.Fields,
		})
		return
	}

	message := "внутренняя ошибка сервера"
	if exposeInternal && err != nil {
		message = err.Error()
	}
	c.JSON(http.StatusInternalServerError, Response{Success: false, Message: message})
}

// TooManyRequests ответ ограничителя частоты, который прерывает цепочку до ErrorHandler.
func TooManyRequests(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Success: false, Message: message})
}
