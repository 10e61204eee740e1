package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// CartRepository хранилище корзины.
type CartRepository interface {
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
}

// ProductFinder поиск товара по идентификатору.
type ProductFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// CartService корзина покупателя.
type CartService struct {
	cart     CartRepository
	products ProductFinder
}

func NewCartService(cart CartRepository, products ProductFinder) *CartService {
	return &CartService{cart: cart, products: products}
}

// Add кладёт товар в корзину, складывая количество с уже лежащим.
func (s *CartService) Add(ctx context.Context, userID uuid.UUID, req validation.AddToCartRequest) (*models.CartItem, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, translate(err)
	}
	if product.SellerID == userID {
		return nil, apperror.ErrOwnProduct
	}
	if !product.IsPurchasable() {
		return nil, apperror.ErrProductUnavailable
	}

	item, err := s.cart.Add(ctx, userID, req.ProductID, req.Quantity)
	return item, translate(err)
}

// UpdateQuantity задаёт количество позиции.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, req validation.UpdateCartRequest) (*models.CartItem, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	item, err := s.cart.UpdateQuantity(ctx, userID, productID, req.Quantity)
	return item, translate(err)
}

func (s *CartService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return translate(s.cart.Remove(ctx, userID, productID))
}

// Clear очищает корзину и возвращает число удалённых позиций.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.cart.Clear(ctx, userID)
	return n, translate(err)
}

func (s *CartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.cart.Count(ctx, userID)
	return n, translate(err)
}

func (s *CartService) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	ok, err := s.cart.Exists(ctx, userID, productID)
	return ok, translate(err)
}

// Get возвращает корзину с итогами.
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	lines, err := s.cart.List(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	cart := models.NewCart(lines)
	return &cart, nil
}
