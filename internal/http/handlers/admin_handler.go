package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/preloved-backend/internal/http/handlers/common"
	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/service"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

const maxTopSellers = 50

// AdminHandler консоль администратора: статистика и модерация.
type AdminHandler struct {
	admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Dashboard GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.admin.Dashboard(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, stats)
}

// Analytics GET /admin/analytics?bucket=day|week|month&days=30
func (h *AdminHandler) Analytics(c *gin.Context) {
	var q validation.AnalyticsQuery
	if err := validation.BindQuery(c, &q); err != nil {
		common.Fail(c, err)
		return
	}

	points, err := h.admin.Analytics(c.Request.Context(), q)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, points)
}

// TopSellers GET /admin/top-sellers?limit=10
func (h *AdminHandler) TopSellers(c *gin.Context) {
	limit := common.ParseIntQuery(c, "limit", 10)
	if limit < 1 || limit > maxTopSellers {
		limit = 10
	}

	sellers, err := h.admin.TopSellers(c.Request.Context(), limit)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, sellers)
}

// ListUsers GET /admin/users?search=&is_active=&is_admin=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	p := common.GetPagination(c)
	filter := models.UserFilter{
		Search: c.Query("search"),
		Limit:  p.Fetch(),
		Offset: p.Offset,
	}

	var err error
	if filter.IsActive, err = boolQuery(c, "is_active"); err != nil {
		common.Fail(c, err)
		return
	}
	if filter.IsAdmin, err = boolQuery(c, "is_admin"); err != nil {
		common.Fail(c, err)
		return
	}

	users, err := h.admin.ListUsers(c.Request.Context(), filter)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, users, p.Page, p.Limit)
}

type userFlagRequest struct {
	Value *bool `json:"value"`
}

// SetUserActive PUT /admin/users/:id/active {"value": false}
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	h.setUserFlag(c, h.admin.SetUserActive)
}

// SetUserVerified PUT /admin/users/:id/verified {"value": true}
func (h *AdminHandler) SetUserVerified(c *gin.Context) {
	h.setUserFlag(c, h.admin.SetUserVerified)
}

func (h *AdminHandler) setUserFlag(c *gin.Context, apply func(ctx context.Context, adminID, userID uuid.UUID, value bool) (*models.User, error)) {
	admin, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	userID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req userFlagRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}
	if req.Value == nil {
		common.Fail(c, apperror.Validation([]apperror.FieldError{{Field: "value", Message: "обязательное поле"}}))
		return
	}

	user, err := apply(c.Request.Context(), admin.ID, userID, *req.Value)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, user)
}

// PendingProducts GET /admin/products/pending
func (h *AdminHandler) PendingProducts(c *gin.Context) {
	p := common.GetPagination(c)

	items, err := h.admin.PendingProducts(c.Request.Context(), p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, items, p.Page, p.Limit)
}

// ApproveProduct PUT /admin/products/:id/approve
func (h *AdminHandler) ApproveProduct(c *gin.Context) {
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.admin.ApproveProduct(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, product)
}

// RejectProduct PUT /admin/products/:id/reject
func (h *AdminHandler) RejectProduct(c *gin.Context) {
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req validation.RejectProductRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	product, err := h.admin.RejectProduct(c.Request.Context(), id, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, product)
}

// ListReports GET /admin/reports?status=
func (h *AdminHandler) ListReports(c *gin.Context) {
	p := common.GetPagination(c)

	reports, err := h.admin.ListReports(c.Request.Context(), c.Query("status"), p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, reports, p.Page, p.Limit)
}

// UpdateReport PUT /admin/reports/:id
func (h *AdminHandler) UpdateReport(c *gin.Context) {
	admin, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req validation.UpdateReportStatusRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	report, err := h.admin.UpdateReport(c.Request.Context(), admin.ID, id, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, report)
}

func boolQuery(c *gin.Context, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.Validation([]apperror.FieldError{{Field: key, Message: "должно быть true или false"}})
	}
	return &v, nil
}
