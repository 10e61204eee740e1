package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/repository"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// ReviewRepository хранилище отзывов.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Exists(ctx context.Context, buyerID, productID uuid.UUID) (bool, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]models.ReviewView, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.ReviewView, error)
	SellerRating(ctx context.Context, sellerID uuid.UUID) (*models.RatingSummary, error)
}

// CompletedPurchaseFinder поиск завершённой покупки товара покупателем.
type CompletedPurchaseFinder interface {
	FindCompleted(ctx context.Context, buyerID, productID uuid.UUID) (*models.Purchase, error)
}

var (
	errReviewExists      = apperror.Conflict("вы уже оставили отзыв на этот товар")
	errReviewNotEligible = apperror.Conflict("отзыв можно оставить только после завершённой покупки")
)

// SellerReviews отзывы продавца вместе со сводной оценкой.
type SellerReviews struct {
	Rating  models.RatingSummary `json:"rating"`
	Reviews []models.ReviewView  `json:"reviews"`
}

// ReviewService отзывы покупателей.
type ReviewService struct {
	reviews   ReviewRepository
	purchases CompletedPurchaseFinder
}

func NewReviewService(reviews ReviewRepository, purchases CompletedPurchaseFinder) *ReviewService {
	return &ReviewService{reviews: reviews, purchases: purchases}
}

// Create сохраняет отзыв покупателя о товаре, купленном им до конца.
func (s *ReviewService) Create(ctx context.Context, buyerID uuid.UUID, req validation.CreateReviewRequest) (*models.Review, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	purchase, err := s.purchases.FindCompleted(ctx, buyerID, req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrPurchaseNotFound) {
			return nil, errReviewNotEligible
		}
		return nil, translate(err)
	}

	exists, err := s.reviews.Exists(ctx, buyerID, req.ProductID)
	if err != nil {
		return nil, translate(err)
	}
	if exists {
		return nil, errReviewExists
	}

	productID := req.ProductID
	review := &models.Review{
		BuyerID:    buyerID,
		SellerID:   purchase.SellerID,
		ProductID:  &productID,
		PurchaseID: &purchase.ID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		// Параллельный дубль отсекает уникальный индекс.
		if appErr := apperror.FromStore(err); apperror.IsConflict(appErr) {
			return nil, errReviewExists
		}
		return nil, translate(err)
	}
	return review, nil
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]models.ReviewView, error) {
	items, err := s.reviews.ListByProduct(ctx, productID, limit, offset)
	return items, translate(err)
}

// ListBySeller отзывы о продавце и его средняя оценка.
func (s *ReviewService) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) (*SellerReviews, error) {
	rating, err := s.reviews.SellerRating(ctx, sellerID)
	if err != nil {
		return nil, translate(err)
	}
	items, err := s.reviews.ListBySeller(ctx, sellerID, limit, offset)
	if err != nil {
		return nil, translate(err)
	}
	return &SellerReviews{Rating: *rating, Reviews: items}, nil
}
