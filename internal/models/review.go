package models

import (
	"time"

	"github.com/google/uuid"
)

// Review отзыв покупателя о купленном товаре.
type Review struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	BuyerID    uuid.UUID  `db:"buyer_id" json:"buyer_id"`
	SellerID   uuid.UUID  `db:"seller_id" json:"seller_id"`
	ProductID  *uuid.UUID `db:"product_id" json:"product_id,omitempty"`
	PurchaseID *uuid.UUID `db:"purchase_id" json:"purchase_id,omitempty"`
	Rating     int        `db:"rating" json:"rating"`
	Comment    *string    `db:"comment" json:"comment,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// ReviewView отзыв с именем автора.
type ReviewView struct {
	Review
	BuyerName   string  `db:"buyer_name" json:"buyer_name"`
	BuyerAvatar *string `db:"buyer_avatar" json:"buyer_avatar,omitempty"`
}

// RatingSummary агрегат оценок продавца.
type RatingSummary struct {
	AverageRating float64 `db:"average_rating" json:"average_rating"`
	ReviewCount   int     `db:"review_count" json:"review_count"`
}
