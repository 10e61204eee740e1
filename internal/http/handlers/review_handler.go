package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/preloved-backend/internal/http/handlers/common"
	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/service"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create POST /reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req validation.CreateReviewRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Created(c, review)
}

// ListByProduct GET /products/:id/reviews
func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	productID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	p := common.GetPagination(c)

	reviews, err := h.reviews.ListByProduct(c.Request.Context(), productID, p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, reviews, p.Page, p.Limit)
}

// ListBySeller GET /users/:id/reviews
func (h *ReviewHandler) ListBySeller(c *gin.Context) {
	sellerID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	p := common.GetPagination(c)

	result, err := h.reviews.ListBySeller(c.Request.Context(), sellerID, p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, sellerReviewsPage{
		Rating: result.Rating,
		Page:   response.NewPage(result.Reviews, p.Page, p.Limit),
	})
}

// sellerReviewsPage страница отзывов с общей оценкой продавца.
type sellerReviewsPage struct {
	Rating models.RatingSummary `json:"rating"`
	response.Page[models.ReviewView]
}
