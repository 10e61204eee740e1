package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/preloved-backend/internal/models"
)

var ErrReviewNotFound = errors.New("review not found")

const reviewViewSelect = `
	SELECT r.id, r.buyer_id, r.seller_id, r.product_id, r.purchase_id, r.rating, r.comment, r.created_at,
		u.full_name AS buyer_name, u.avatar_url AS buyer_avatar
	FROM reviews r
	JOIN users u ON u.id = r.buyer_id
`

// ReviewRepository отвечает за работу с таблицей reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository создаёт экземпляр репозитория.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create сохраняет отзыв. Повтор для пары (покупатель, товар) отклоняется ограничением уникальности.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (buyer_id, seller_id, product_id, purchase_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		review.BuyerID, review.SellerID, review.ProductID, review.PurchaseID, review.Rating, review.Comment,
	).Scan(&review.ID, &review.CreatedAt); err != nil {
		return fmt.Errorf("review repository: create %w", err)
	}
	return nil
}

// Exists проверяет, оставлял ли покупатель отзыв о товаре.
func (r *ReviewRepository) Exists(ctx context.Context, buyerID, productID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE buyer_id = $1 AND product_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, buyerID, productID); err != nil {
		return false, fmt.Errorf("review repository: exists %w", err)
	}
	return exists, nil
}

// ListByProduct возвращает отзывы о товаре.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]models.ReviewView, error) {
	reviews := []models.ReviewView{}
	query := reviewViewSelect + ` WHERE r.product_id = $1 ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &reviews, query, productID, limit, offset); err != nil {
		return nil, fmt.Errorf("review repository: list by product %w", err)
	}
	return reviews, nil
}

// ListBySeller возвращает отзывы о продавце.
func (r *ReviewRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.ReviewView, error) {
	reviews := []models.ReviewView{}
	query := reviewViewSelect + ` WHERE r.seller_id = $1 ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &reviews, query, sellerID, limit, offset); err != nil {
		return nil, fmt.Errorf("review repository: list by seller %w", err)
	}
	return reviews, nil
}

// SellerRating возвращает среднюю оценку и число отзывов продавца.
func (r *ReviewRepository) SellerRating(ctx context.Context, sellerID uuid.UUID) (*models.RatingSummary, error) {
	var summary models.RatingSummary
	query := `
		SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0)::float8 AS average_rating, COUNT(*) AS review_count
		FROM reviews WHERE seller_id = $1
	`
	if err := r.db.GetContext(ctx, &summary, query, sellerID); err != nil {
		return nil, fmt.Errorf("review repository: seller rating %w", err)
	}
	return &summary, nil
}
