package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/preloved-backend/internal/http/handlers/common"
	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/service"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// PurchaseHandler покупки и их статусы.
type PurchaseHandler struct {
	purchases *service.PurchaseService
}

func NewPurchaseHandler(purchases *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// Create POST /purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req validation.CreatePurchaseRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	purchase, err := h.purchases.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Created(c, purchase)
}

// List GET /purchases?role=buyer|seller&status=
func (h *PurchaseHandler) List(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	p := common.GetPagination(c)

	list := h.purchases.ListAsBuyer
	switch c.DefaultQuery("role", "buyer") {
	case "buyer":
	case "seller":
		list = h.purchases.ListAsSeller
	default:
		common.Fail(c, apperror.Validation([]apperror.FieldError{{Field: "role", Message: "должно быть buyer или seller"}}))
		return
	}

	views, err := list(c.Request.Context(), user.ID, c.Query("status"), p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, views, p.Page, p.Limit)
}

// Get GET /purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	actor, ok := common.Actor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.purchases.Get(c.Request.Context(), actor, id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateStatus PATCH /purchases/:id/status
func (h *PurchaseHandler) UpdateStatus(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req validation.UpdatePurchaseStatusRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	purchase, err := h.purchases.UpdateStatus(c.Request.Context(), user.ID, id, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, purchase)
}

// ListAll GET /admin/purchases
func (h *PurchaseHandler) ListAll(c *gin.Context) {
	p := common.GetPagination(c)

	views, err := h.purchases.ListAll(c.Request.Context(), c.Query("status"), p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, views, p.Page, p.Limit)
}
