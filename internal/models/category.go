package models

import (
	"time"

	"github.com/google/uuid"
)

// Category раздел каталога.
type Category struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Slug          string    `db:"slug" json:"slug"`
	Description   *string   `db:"description" json:"description,omitempty"`
	Icon          *string   `db:"icon" json:"icon,omitempty"`
	SortOrder     int       `db:"sort_order" json:"sort_order"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	ProductsCount int       `db:"products_count" json:"products_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
