package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/preloved-backend/internal/http/handlers/common"
	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/service"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

type CartHandler struct {
	cart *service.CartService
}

func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// Get GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	cart, err := h.cart.Get(c.Request.Context(), user.ID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, cart)
}

// Count GET /cart/count
func (h *CartHandler) Count(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	count, err := h.cart.Count(c.Request.Context(), user.ID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

// Check GET /cart/check/:productId
func (h *CartHandler) Check(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	productID, ok := common.UUIDParam(c, "productId")
	if !ok {
		return
	}

	inCart, err := h.cart.Contains(c.Request.Context(), user.ID, productID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"in_cart": inCart})
}

// Add POST /cart
func (h *CartHandler) Add(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req validation.AddToCartRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	item, err := h.cart.Add(c.Request.Context(), user.ID, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Created(c, item)
}

// Update PUT /cart/:productId
func (h *CartHandler) Update(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	productID, ok := common.UUIDParam(c, "productId")
	if !ok {
		return
	}

	var req validation.UpdateCartRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	item, err := h.cart.UpdateQuantity(c.Request.Context(), user.ID, productID, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, item)
}

// Remove DELETE /cart/:productId
func (h *CartHandler) Remove(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	productID, ok := common.UUIDParam(c, "productId")
	if !ok {
		return
	}

	if err := h.cart.Remove(c.Request.Context(), user.ID, productID); err != nil {
		common.Fail(c, err)
		return
	}
	response.Message(c, "товар удалён из корзины")
}

// Clear DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	removed, err := h.cart.Clear(c.Request.Context(), user.ID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"removed": removed})
}
