package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/preloved-backend/internal/http/handlers/common"
	"github.com/ignatzorin/preloved-backend/internal/http/middleware"
	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/service"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

type CategoryHandler struct {
	categories *service.CategoryService
}

func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List GET /categories. Администратор может запросить ?all=true.
func (h *CategoryHandler) List(c *gin.Context) {
	includeInactive := false
	if user, ok := middleware.CurrentUser(c); ok && user.IsAdmin {
		includeInactive = c.Query("all") == "true"
	}

	categories, err := h.categories.List(c.Request.Context(), includeInactive)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, categories)
}

// Get GET /categories/:slug
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categories.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, category)
}

// Create POST /admin/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req validation.CategoryRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	category, err := h.categories.Create(c.Request.Context(), req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Created(c, category)
}

// Update PUT /admin/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req validation.CategoryRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	category, err := h.categories.Update(c.Request.Context(), id, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, category)
}

// Delete DELETE /admin/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		common.Fail(c, err)
		return
	}
	response.Message(c, "категория удалена")
}
