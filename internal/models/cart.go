package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem позиция корзины пользователя.
type CartItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ProductID uuid.UUID `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CartLine позиция корзины вместе с данными товара.
type CartLine struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	ProductID     uuid.UUID       `db:"product_id" json:"product_id"`
	Quantity      int             `db:"quantity" json:"quantity"`
	Title         string          `db:"title" json:"title"`
	Price         decimal.Decimal `db:"price" json:"price"`
	ProductStatus string          `db:"product_status" json:"product_status"`
	SellerID      uuid.UUID       `db:"seller_id" json:"seller_id"`
	SellerName    string          `db:"seller_name" json:"seller_name"`
	PrimaryImage  *string         `db:"primary_image" json:"primary_image,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// Subtotal стоимость позиции.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart содержимое корзины с итогами.
type Cart struct {
	Items      []CartLine      `json:"items"`
	TotalItems int             `json:"total_items"`
	Total      decimal.Decimal `json:"total"`
}

// NewCart собирает корзину и считает итоги.
func NewCart(lines []CartLine) Cart {
	cart := Cart{Items: lines, Total: decimal.Zero}
	if cart.Items == nil {
		cart.Items = []CartLine{}
	}
	for _, line := range lines {
		cart.TotalItems += line.Quantity
		cart.Total = cart.Total.Add(line.Subtotal())
	}
	return cart
}
