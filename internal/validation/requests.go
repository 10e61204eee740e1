package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Auth

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,password"`
	FullName string  `json:"full_name" validate:"required,min=2,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = trimPtr(r.Phone)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Users

type UpdateProfileRequest struct {
	FullName   *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,phone"`
	AvatarURL  *string `json:"avatar_url" validate:"omitempty,max=500"`
	Bio        *string `json:"bio" validate:"omitempty,max=1000"`
	Location   *string `json:"location" validate:"omitempty,max=100"`
	PostalCode *string `json:"postal_code" validate:"omitempty,postcode"`
}

func (r *UpdateProfileRequest) Normalize() {
	r.FullName = trimPtr(r.FullName)
	r.Phone = trimPtr(r.Phone)
	r.AvatarURL = trimPtr(r.AvatarURL)
	r.Bio = trimPtr(r.Bio)
	r.Location = trimPtr(r.Location)
	r.PostalCode = trimPtr(r.PostalCode)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
}

// Catalog

type CategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Icon        *string `json:"icon" validate:"omitempty,max=100"`
	SortOrder   int     `json:"sort_order" validate:"gte=0"`
	IsActive    *bool   `json:"is_active"`
}

func (r *CategoryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = trimPtr(r.Description)
	r.Icon = trimPtr(r.Icon)
}

type CreateProductRequest struct {
	CategoryID  uuid.UUID        `json:"category_id" validate:"required"`
	Title       string           `json:"title" validate:"required,min=3,max=200"`
	Description string           `json:"description" validate:"required,min=10,max=5000"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0,lte=10000000"`
	Condition   string           `json:"condition" validate:"required,condition"`
	Brand       *string          `json:"brand" validate:"omitempty,max=100"`
	Size        *string          `json:"size" validate:"omitempty,max=50"`
	Location    *string          `json:"location" validate:"omitempty,max=100"`
	Images      []string         `json:"images" validate:"omitempty,max=10,dive,required,max=500"`
}

func (r *CreateProductRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Condition = strings.ToLower(strings.TrimSpace(r.Condition))
	r.Brand = trimPtr(r.Brand)
	r.Size = trimPtr(r.Size)
	r.Location = trimPtr(r.Location)
	for i := range r.Images {
		r.Images[i] = strings.TrimSpace(r.Images[i])
	}
}

// UpdateProductRequest переиспользует правила создания для переданных полей.
type UpdateProductRequest struct {
	CategoryID  *uuid.UUID       `json:"category_id"`
	Title       *string          `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string          `json:"description" validate:"omitempty,min=10,max=5000"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0,lte=10000000"`
	Condition   *string          `json:"condition" validate:"omitempty,condition"`
	Brand       *string          `json:"brand" validate:"omitempty,max=100"`
	Size        *string          `json:"size" validate:"omitempty,max=50"`
	Location    *string          `json:"location" validate:"omitempty,max=100"`
	Status      *string          `json:"status" validate:"omitempty,oneof=pending inactive"`
}

func (r *UpdateProductRequest) Normalize() {
	r.Title = trimPtr(r.Title)
	r.Description = trimPtr(r.Description)
	r.Brand = trimPtr(r.Brand)
	r.Size = trimPtr(r.Size)
	r.Location = trimPtr(r.Location)
	if r.Condition != nil {
		c := strings.ToLower(strings.TrimSpace(*r.Condition))
		r.Condition = &c
	}
}

// ProductQuery параметры выборки каталога из строки запроса.
type ProductQuery struct {
	CategoryID string `form:"category_id" validate:"omitempty,uuid"`
	Category   string `form:"category" validate:"omitempty,max=100"`
	MinPrice   string `form:"min_price" validate:"omitempty,numeric"`
	MaxPrice   string `form:"max_price" validate:"omitempty,numeric"`
	Condition  string `form:"condition" validate:"omitempty,condition"`
	Brand      string `form:"brand" validate:"omitempty,max=100"`
	Search     string `form:"search" validate:"omitempty,max=100"`
	Location   string `form:"location" validate:"omitempty,max=100"`
	Sort       string `form:"sort" validate:"omitempty,product_sort"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

func (q *ProductQuery) Normalize() {
	q.Search = strings.TrimSpace(q.Search)
	q.Brand = strings.TrimSpace(q.Brand)
	q.Location = strings.TrimSpace(q.Location)
	q.Category = strings.TrimSpace(q.Category)
}

// Cart and purchases

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1,max=10"`
}

func (r *AddToCartRequest) Normalize() {
	if r.Quantity == 0 {
		r.Quantity = 1
	}
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=10"`
}

type CreatePurchaseRequest struct {
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	Quantity        int       `json:"quantity" validate:"omitempty,min=1,max=10"`
	ShippingAddress *string   `json:"shipping_address" validate:"omitempty,max=500"`
	Note            *string   `json:"note" validate:"omitempty,max=1000"`
}

func (r *CreatePurchaseRequest) Normalize() {
	if r.Quantity == 0 {
		r.Quantity = 1
	}
	r.ShippingAddress = trimPtr(r.ShippingAddress)
	r.Note = trimPtr(r.Note)
}

type UpdatePurchaseStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed completed cancelled"`
}

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string   `json:"comment" validate:"omitempty,max=2000"`
}

func (r *CreateReviewRequest) Normalize() {
	r.Comment = trimPtr(r.Comment)
}

// Chat

type StartChatRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

func (r *SendMessageRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
}

// Reports and moderation

type CreateReportRequest struct {
	ReportedUserID    *uuid.UUID `json:"reported_user_id"`
	ReportedProductID *uuid.UUID `json:"reported_product_id"`
	ReportedMessageID *uuid.UUID `json:"reported_message_id"`
	Reason            string     `json:"reason" validate:"required,report_reason"`
	Description       *string    `json:"description" validate:"omitempty,max=2000"`
}

func (r *CreateReportRequest) Normalize() {
	r.Reason = strings.ToLower(strings.TrimSpace(r.Reason))
	r.Description = trimPtr(r.Description)
}

type UpdateReportStatusRequest struct {
	Status    string  `json:"status" validate:"required,oneof=reviewed resolved dismissed"`
	AdminNote *string `json:"admin_note" validate:"omitempty,max=2000"`
}

type RejectProductRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

func (r *RejectProductRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

type AnalyticsQuery struct {
	Bucket string `form:"bucket" validate:"omitempty,oneof=day week month"`
	Days   int    `form:"days" validate:"omitempty,min=1,max=365"`
}

func (q *AnalyticsQuery) Normalize() {
	if q.Bucket == "" {
		q.Bucket = "day"
	}
	if q.Days == 0 {
		q.Days = 30
	}
}

// reportTargetRule требует ровно один объект жалобы.
func reportTargetRule(sl validator.StructLevel) {
	req := sl.Current().Interface().(CreateReportRequest)
	targets := 0
	for _, id := range []*uuid.UUID{req.ReportedUserID, req.ReportedProductID, req.ReportedMessageID} {
		if id != nil && *id != uuid.Nil {
			targets++
		}
	}
	if targets != 1 {
		sl.ReportError(req.ReportedUserID, "target", "Target", "exactly_one_target", "")
	}
}

func priceRangeRule(sl validator.StructLevel) {
	q := sl.Current().Interface().(ProductQuery)
	if q.MinPrice == "" || q.MaxPrice == "" {
		return
	}
	minPrice, errMin := decimal.NewFromString(q.MinPrice)
	maxPrice, errMax := decimal.NewFromString(q.MaxPrice)
	if errMin == nil && errMax == nil && minPrice.GreaterThan(maxPrice) {
		sl.ReportError(q.MinPrice, "min_price", "MinPrice", "price_range", "")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
