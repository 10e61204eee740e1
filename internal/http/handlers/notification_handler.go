package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/preloved-backend/internal/http/handlers/common"
	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/service"
)

// NotificationHandler обслуживает маршруты уведомлений.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler создаёт новый хэндлер.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications обрабатывает GET /notifications.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	p := common.GetPagination(c)
	unreadOnly := c.Query("unread_only") == "true"

	items, err := h.notifications.List(c.Request.Context(), user.ID, p.Fetch(), p.Offset, unreadOnly)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, items, p.Page, p.Limit)
}

// UnreadCount обрабатывает GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	count, err := h.notifications.CountUnread(c.Request.Context(), user.ID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

// MarkAsRead обрабатывает PUT /notifications/:id/read.
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkAsRead(c.Request.Context(), id, user.ID); err != nil {
		common.Fail(c, err)
		return
	}
	response.Message(c, "уведомление прочитано")
}

// MarkAllAsRead обрабатывает PUT /notifications/read-all.
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	marked, err := h.notifications.MarkAllAsRead(c.Request.Context(), user.ID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"marked": marked})
}

// DeleteNotification обрабатывает DELETE /notifications/:id.
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), id, user.ID); err != nil {
		common.Fail(c, err)
		return
	}
	response.Message(c, "уведомление удалено")
}
