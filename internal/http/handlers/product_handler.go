package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/preloved-backend/internal/http/handlers/common"
	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/service"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

const imageFormField = "image"

// ProductHandler объявления, изображения и избранное.
type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var q validation.ProductQuery
	if err := validation.BindQuery(c, &q); err != nil {
		common.Fail(c, err)
		return
	}
	p := common.GetPagination(c)

	items, err := h.products.List(c.Request.Context(), q, p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, items, p.Page, p.Limit)
}

// Get GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	details, err := h.products.Get(c.Request.Context(), id, common.OptionalActor(c))
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, details)
}

// Mine GET /products/mine?status=
func (h *ProductHandler) Mine(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	p := common.GetPagination(c)

	items, err := h.products.ListMine(c.Request.Context(), user.ID, c.Query("status"), p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, items, p.Page, p.Limit)
}

// Create POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req validation.CreateProductRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	details, err := h.products.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Created(c, details)
}

// Update PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	actor, ok := common.Actor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req validation.UpdateProductRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, product)
}

// Delete DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	actor, ok := common.Actor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), actor, id); err != nil {
		common.Fail(c, err)
		return
	}
	response.Message(c, "объявление удалено")
}

// UploadImage POST /products/:id/images (multipart, поле image)
func (h *ProductHandler) UploadImage(c *gin.Context) {
	actor, ok := common.Actor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile(imageFormField)
	if err != nil {
		common.Fail(c, apperror.Validation([]apperror.FieldError{{Field: imageFormField, Message: "файл обязателен"}}))
		return
	}
	file, err := header.Open()
	if err != nil {
		common.Fail(c, apperror.Internal(err))
		return
	}
	defer file.Close()

	image, err := h.products.UploadImage(c.Request.Context(), actor, id, header.Filename, file)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Created(c, image)
}

// SetPrimaryImage PUT /products/:id/images/:imageId/primary
func (h *ProductHandler) SetPrimaryImage(c *gin.Context) {
	actor, ok := common.Actor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := common.UUIDParam(c, "imageId")
	if !ok {
		return
	}

	images, err := h.products.SetPrimaryImage(c.Request.Context(), actor, id, imageID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, images)
}

// DeleteImage DELETE /products/:id/images/:imageId
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	actor, ok := common.Actor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := common.UUIDParam(c, "imageId")
	if !ok {
		return
	}

	if err := h.products.DeleteImage(c.Request.Context(), actor, id, imageID); err != nil {
		common.Fail(c, err)
		return
	}
	response.Message(c, "изображение удалено")
}

// ToggleFavorite POST /products/:id/favorite
func (h *ProductHandler) ToggleFavorite(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.products.ToggleFavorite(c.Request.Context(), user.ID, id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, result)
}

// Favorites GET /products/favorites
func (h *ProductHandler) Favorites(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	p := common.GetPagination(c)

	items, err := h.products.ListFavorites(c.Request.Context(), user.ID, p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, items, p.Page, p.Limit)
}
