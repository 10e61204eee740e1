package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/repository"
	"github.com/ignatzorin/preloved-backend/internal/service"
)

type memoryNotifications struct {
	items   []models.Notification
	listErr error
	// lastLimit лимит последнего запроса List.
	lastLimit int
}

func (m *memoryNotifications) Create(_ context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	m.items = append(m.items, *n)
	return nil
}

func (m *memoryNotifications) List(_ context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Notification
	for _, n := range m.items {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryNotifications) MarkAsRead(_ context.Context, id, userID uuid.UUID) error {
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			m.items[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (m *memoryNotifications) MarkAllAsRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for i := range m.items {
		if m.items[i].UserID == userID && !m.items[i].IsRead {
			m.items[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *memoryNotifications) Delete(_ context.Context, id, userID uuid.UUID) error {
	for i, n := range m.items {
		if n.ID == id && n.UserID == userID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (m *memoryNotifications) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range m.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func notificationRouter(repo *memoryNotifications, user *models.User) http.Handler {
	h := NewNotificationHandler(service.NewNotificationService(repo, nil))
	r := newTestRouter(user)
	r.GET("/notifications", h.ListNotifications)
	r.GET("/notifications/unread-count", h.UnreadCount)
	r.PUT("/notifications/read-all", h.MarkAllAsRead)
	r.PUT("/notifications/:id/read", h.MarkAsRead)
	r.DELETE("/notifications/:id", h.DeleteNotification)
	return r
}

func seedNotifications(t *testing.T, repo *memoryNotifications, userID uuid.UUID, n int) {
	t.Helper()
	svc := service.NewNotificationService(repo, nil)
	for i := 0; i < n; i++ {
		_, err := svc.Create(context.Background(), userID, "new_message", "Новое сообщение", map[string]int{"n": i})
		require.NoError(t, err)
	}
}

func TestNotificationHandler_ListPagination(t *testing.T) {
	user := &models.User{ID: uuid.New(), IsActive: true}
	repo := &memoryNotifications{}
	seedNotifications(t, repo, user.ID, 3)
	seedNotifications(t, repo, uuid.New(), 2)
	r := notificationRouter(repo, user)

	w := doJSON(r, http.MethodGet, "/notifications?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page response.Page[models.Notification]
	readEnvelope(t, w, &page)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Limit)
	assert.True(t, page.HasMore)
	assert.Equal(t, 3, repo.lastLimit, "запрашивается на одну запись больше")

	w = doJSON(r, http.MethodGet, "/notifications?limit=2&page=2", nil)
	readEnvelope(t, w, &page)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)

	w = doJSON(r, http.MethodGet, "/notifications?page=5", nil)
	readEnvelope(t, w, &page)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestNotificationHandler_ReadFlow(t *testing.T) {
	user := &models.User{ID: uuid.New(), IsActive: true}
	repo := &memoryNotifications{}
	seedNotifications(t, repo, user.ID, 2)
	r := notificationRouter(repo, user)

	w := doJSON(r, http.MethodPut, "/notifications/"+repo.items[0].ID.String()+"/read", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/notifications/unread-count", nil)
	assert.JSONEq(t, `{"success":true,"data":{"count":1}}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/notifications?unread_only=true", nil)
	var page response.Page[models.Notification]
	readEnvelope(t, w, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, repo.items[1].ID, page.Items[0].ID)

	w = doJSON(r, http.MethodPut, "/notifications/read-all", nil)
	assert.JSONEq(t, `{"success":true,"data":{"marked":1}}`, w.Body.String())
}

func TestNotificationHandler_ForeignNotification(t *testing.T) {
	owner := uuid.New()
	repo := &memoryNotifications{}
	seedNotifications(t, repo, owner, 1)
	r := notificationRouter(repo, &models.User{ID: uuid.New(), IsActive: true})

	w := doJSON(r, http.MethodDelete, "/notifications/"+repo.items[0].ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, repo.items, 1)

	w = doJSON(r, http.MethodPut, "/notifications/nope/read", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := readEnvelope(t, w, nil)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "id", env.Errors[0].Field)
}

func TestNotificationHandler_StoreFailureIsHidden(t *testing.T) {
	repo := &memoryNotifications{listErr: errors.New("pq: too many connections")}
	r := notificationRouter(repo, &models.User{ID: uuid.New(), IsActive: true})

	w := doJSON(r, http.MethodGet, "/notifications", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := readEnvelope(t, w, nil)
	assert.NotContains(t, env.Message, "pq:")
}
