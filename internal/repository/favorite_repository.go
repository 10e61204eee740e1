package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/repository/common"
)

// FavoriteRepository отвечает за работу с таблицей favorites.
type FavoriteRepository struct {
	db *sqlx.DB
}

// NewFavoriteRepository создаёт экземпляр репозитория.
func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Toggle добавляет товар в избранное или убирает его оттуда, поддерживая favorite_count
// в той же транзакции.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID, productID uuid.UUID) (*models.FavoriteToggle, error) {
	result := &models.FavoriteToggle{ProductID: productID}
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`, userID, productID)
		if err != nil {
			return fmt.Errorf("favorite repository: toggle delete %w", err)
		}

		delta := -1
		if rows, _ := res.RowsAffected(); rows == 0 {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO favorites (user_id, product_id) VALUES ($1, $2)
				ON CONFLICT (user_id, product_id) DO NOTHING
			`, userID, productID); err != nil {
				return fmt.Errorf("favorite repository: toggle insert %w", err)
			}
			delta = 1
			result.IsFavorited = true
		}

		if err := tx.QueryRowxContext(ctx, `
			UPDATE products SET favorite_count = GREATEST(favorite_count + $2, 0)
			WHERE id = $1
			RETURNING favorite_count
		`, productID, delta).Scan(&result.FavoriteCount); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductNotFound
			}
			return fmt.Errorf("favorite repository: favorite counter %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// IsFavorited проверяет, добавлен ли товар в избранное пользователя.
func (r *FavoriteRepository) IsFavorited(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND product_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, userID, productID); err != nil {
		return false, fmt.Errorf("favorite repository: is favorited %w", err)
	}
	return exists, nil
}

// ListByUser возвращает избранные товары пользователя.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ProductListItem, error) {
	query := productListSelect + `
		JOIN favorites f ON f.product_id = p.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`
	items := []models.ProductListItem{}
	if err := r.db.SelectContext(ctx, &items, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("favorite repository: list by user %w", err)
	}
	return items, nil
}
