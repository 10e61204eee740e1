package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product объявление продавца.
type Product struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	SellerID        uuid.UUID       `db:"seller_id" json:"seller_id"`
	CategoryID      uuid.UUID       `db:"category_id" json:"category_id"`
	Title           string          `db:"title" json:"title"`
	Description     string          `db:"description" json:"description"`
	Price           decimal.Decimal `db:"price" json:"price"`
	Condition       string          `db:"condition" json:"condition"`
	Brand           *string         `db:"brand" json:"brand,omitempty"`
	Size            *string         `db:"size" json:"size,omitempty"`
	Location        *string         `db:"location" json:"location,omitempty"`
	Status          string          `db:"status" json:"status"`
	RejectionReason *string         `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ViewCount       int             `db:"view_count" json:"view_count"`
	FavoriteCount   int             `db:"favorite_count" json:"favorite_count"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// IsPurchasable сообщает, можно ли купить или положить товар в корзину.
func (p *Product) IsPurchasable() bool {
	return p.Status == ProductStatusApproved
}

// ProductImage изображение объявления.
type ProductImage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ProductID uuid.UUID `db:"product_id" json:"product_id"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	IsPrimary bool      `db:"is_primary" json:"is_primary"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProductListItem строка каталога с основным изображением и продавцом.
type ProductListItem struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	SellerID      uuid.UUID       `db:"seller_id" json:"seller_id"`
	SellerName    string          `db:"seller_name" json:"seller_name"`
	CategoryID    uuid.UUID       `db:"category_id" json:"category_id"`
	CategoryName  string          `db:"category_name" json:"category_name"`
	Title         string          `db:"title" json:"title"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Condition     string          `db:"condition" json:"condition"`
	Brand         *string         `db:"brand" json:"brand,omitempty"`
	Location      *string         `db:"location" json:"location,omitempty"`
	Status        string          `db:"status" json:"status"`
	PrimaryImage  *string         `db:"primary_image" json:"primary_image,omitempty"`
	ViewCount     int             `db:"view_count" json:"view_count"`
	FavoriteCount int             `db:"favorite_count" json:"favorite_count"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// ProductDetails полная карточка товара.
type ProductDetails struct {
	Product
	Images      []ProductImage `json:"images"`
	Seller      *UserSummary   `json:"seller,omitempty"`
	Category    *Category      `json:"category,omitempty"`
	IsFavorited bool           `json:"is_favorited"`
	IsInCart    bool           `json:"is_in_cart"`
}

// ProductFilter параметры выборки каталога.
type ProductFilter struct {
	CategoryID   *uuid.UUID
	CategorySlug string
	SellerID     *uuid.UUID
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Condition    string
	Brand        string
	Search       string
	Location     string
	Statuses     []string
	Sort         string
	Limit        int
	Offset       int
}

// ProductUpdate изменяемые поля объявления; nil означает «не менять».
type ProductUpdate struct {
	CategoryID  *uuid.UUID
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Condition   *string
	Brand       *string
	Size        *string
	Location    *string
	Status      *string
}
