package models

import (
	"time"

	"github.com/google/uuid"
)

type Favorite struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ProductID uuid.UUID `db:"product_id" json:"product_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FavoriteToggle результат переключения избранного.
type FavoriteToggle struct {
	ProductID     uuid.UUID `json:"product_id"`
	IsFavorited   bool      `json:"is_favorited"`
	FavoriteCount int       `json:"favorite_count"`
}
