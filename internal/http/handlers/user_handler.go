package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/preloved-backend/internal/http/handlers/common"
	"github.com/ignatzorin/preloved-backend/internal/http/middleware"
	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/service"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// UserHandler профили и подписки.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	user, err := h.users.Me(c.Request.Context(), current.ID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateMe PUT /users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req validation.UpdateProfileRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), current.ID, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, user)
}

// Profile GET /users/:id
func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	var viewerID *uuid.UUID
	if viewer, ok := middleware.CurrentUser(c); ok {
		viewerID = &viewer.ID
	}

	profile, err := h.users.PublicProfile(c.Request.Context(), userID, viewerID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, profile)
}

// Listings GET /users/:id/products
func (h *UserHandler) Listings(c *gin.Context) {
	userID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	p := common.GetPagination(c)

	items, err := h.users.ListListings(c.Request.Context(), userID, p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, items, p.Page, p.Limit)
}

// Follow POST /users/:id/follow
func (h *UserHandler) Follow(c *gin.Context) {
	h.changeFollow(c, true)
}

// Unfollow DELETE /users/:id/follow
func (h *UserHandler) Unfollow(c *gin.Context) {
	h.changeFollow(c, false)
}

func (h *UserHandler) changeFollow(c *gin.Context, follow bool) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	targetID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	var (
		result *service.FollowResult
		err    error
	)
	if follow {
		result, err = h.users.Follow(c.Request.Context(), current.ID, targetID)
	} else {
		result, err = h.users.Unfollow(c.Request.Context(), current.ID, targetID)
	}
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, result)
}

// Followers GET /users/:id/followers
func (h *UserHandler) Followers(c *gin.Context) {
	userID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	p := common.GetPagination(c)

	users, err := h.users.Followers(c.Request.Context(), userID, p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, users, p.Page, p.Limit)
}

// Following GET /users/:id/following
func (h *UserHandler) Following(c *gin.Context) {
	userID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	p := common.GetPagination(c)

	users, err := h.users.Following(c.Request.Context(), userID, p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, users, p.Page, p.Limit)
}
