package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/preloved-backend/internal/http/handlers/common"
	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/service"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// ChatHandler чаты покупателя и продавца.
type ChatHandler struct {
	chats *service.ChatService
}

func NewChatHandler(chats *service.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// StartRoom POST /chat/rooms
func (h *ChatHandler) StartRoom(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req validation.StartChatRequest
	if err := validation.Bind(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	started, err := h.chats.StartRoom(c.Request.Context(), user.ID, req.ProductID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	if started.Created {
		response.Created(c, started)
		return
	}
	response.Success(c, started)
}

// ListRooms GET /chat/rooms
func (h *ChatHandler) ListRooms(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	p := common.GetPagination(c)

	rooms, err := h.chats.ListRooms(c.Request.Context(), user.ID, p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, rooms, p.Page, p.Limit)
}

// Messages GET /chat/rooms/:id/messages
func (h *ChatHandler) Messages(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	roomID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	p := common.GetPagination(c)

	messages, err := h.chats.Messages(c.Request.Context(), user.ID, roomID, p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, messages, p.Page, p.Limit)
}

// Send POST /chat/rooms/:id/messages
func (h *ChatHandler) Send(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	roomID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req validation.SendMessageRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	message, err := h.chats.Send(c.Request.Context(), user.ID, roomID, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Created(c, message)
}

// MarkRead PUT /chat/rooms/:id/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	roomID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	marked, err := h.chats.MarkRead(c.Request.Context(), user.ID, roomID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"marked": marked})
}

// UnreadCount GET /chat/unread-count
func (h *ChatHandler) UnreadCount(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	count, err := h.chats.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}
