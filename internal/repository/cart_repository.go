package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/preloved-backend/internal/models"
)

var ErrCartItemNotFound = errors.New("cart item not found")

const cartItemColumns = `id, user_id, product_id, quantity, created_at, updated_at`

// CartRepository отвечает за работу с таблицей cart_items.
// Все запросы ограничены идентификатором владельца корзины.
type CartRepository struct {
	db *sqlx.DB
}

// NewCartRepository создаёт экземпляр репозитория.
func NewCartRepository(db *sqlx.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Add добавляет товар в корзину или увеличивает количество существующей позиции.
// Слияние выполняется одним запросом, итог ограничен максимумом.
func (r *CartRepository) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	query := fmt.Sprintf(`
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, LEAST(GREATEST($3::int, %[1]d), %[2]d))
		ON CONFLICT (user_id, product_id) DO UPDATE
		SET quantity = LEAST(cart_items.quantity + EXCLUDED.quantity, %[2]d),
			updated_at = NOW()
		RETURNING %[3]s
	`, models.MinQuantity, models.MaxQuantity, cartItemColumns)

	var item models.CartItem
	if err := r.db.GetContext(ctx, &item, query, userID, productID, quantity); err != nil {
		return nil, fmt.Errorf("cart repository: add %w", err)
	}
	return &item, nil
}

// UpdateQuantity устанавливает количество позиции.
func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	query := fmt.Sprintf(`
		UPDATE cart_items SET quantity = $3, updated_at = NOW()
		WHERE user_id = $1 AND product_id = $2
		RETURNING %s
	`, cartItemColumns)

	var item models.CartItem
	if err := r.db.GetContext(ctx, &item, query, userID, productID, quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("cart repository: update quantity %w", err)
	}
	return &item, nil
}

// Remove удаляет позицию из корзины.
func (r *CartRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("cart repository: remove %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// Clear очищает корзину пользователя и возвращает число удалённых позиций.
func (r *CartRepository) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("cart repository: clear %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// Count возвращает число позиций в корзине.
func (r *CartRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("cart repository: count %w", err)
	}
	return count, nil
}

// Exists проверяет, лежит ли товар в корзине пользователя.
func (r *CartRepository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM cart_items WHERE user_id = $1 AND product_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, userID, productID); err != nil {
		return false, fmt.Errorf("cart repository: exists %w", err)
	}
	return exists, nil
}

// List возвращает содержимое корзины с данными товаров.
func (r *CartRepository) List(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	query := `
		SELECT ci.id, ci.product_id, ci.quantity, ci.created_at,
			p.title, p.price, p.status AS product_status, p.seller_id,
			u.full_name AS seller_name,
			(SELECT pi.image_url FROM product_images pi
				WHERE pi.product_id = p.id
				ORDER BY pi.is_primary DESC, pi.sort_order
				LIMIT 1) AS primary_image
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		JOIN users u ON u.id = p.seller_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at DESC
	`
	lines := []models.CartLine{}
	if err := r.db.SelectContext(ctx, &lines, query, userID); err != nil {
		return nil, fmt.Errorf("cart repository: list %w", err)
	}
	return lines, nil
}
