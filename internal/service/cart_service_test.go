package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/repository"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

func TestCartService_Add_DefaultsQuantity(t *testing.T) {
	cart := new(mockCartRepo)
	products := new(mockProductRepo)
	svc := NewCartService(cart, products)

	userID := uuid.New()
	product := &models.Product{ID: uuid.New(), SellerID: uuid.New(), Status: models.ProductStatusApproved}
	products.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	cart.On("Add", mock.Anything, userID, product.ID, 1).Return(&models.CartItem{UserID: userID, ProductID: product.ID, Quantity: 1}, nil)

	item, err := svc.Add(context.Background(), userID, validation.AddToCartRequest{ProductID: product.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestCartService_Add_OwnProduct(t *testing.T) {
	cart := new(mockCartRepo)
	products := new(mockProductRepo)
	svc := NewCartService(cart, products)

	sellerID := uuid.New()
	product := &models.Product{ID: uuid.New(), SellerID: sellerID, Status: models.ProductStatusApproved}
	products.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	_, err := svc.Add(context.Background(), sellerID, validation.AddToCartRequest{ProductID: product.ID})
	assert.ErrorIs(t, err, apperror.ErrOwnProduct)
	cart.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_Add_Unavailable(t *testing.T) {
	products := new(mockProductRepo)
	svc := NewCartService(new(mockCartRepo), products)

	product := &models.Product{ID: uuid.New(), SellerID: uuid.New(), Status: models.ProductStatusPending}
	products.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	_, err := svc.Add(context.Background(), uuid.New(), validation.AddToCartRequest{ProductID: product.ID})
	assert.ErrorIs(t, err, apperror.ErrProductUnavailable)
}

func TestCartService_Add_UnknownProduct(t *testing.T) {
	products := new(mockProductRepo)
	svc := NewCartService(new(mockCartRepo), products)

	products.On("GetByID", mock.Anything, mock.Anything).Return(nil, repository.ErrProductNotFound)

	_, err := svc.Add(context.Background(), uuid.New(), validation.AddToCartRequest{ProductID: uuid.New()})
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}

func TestCartService_UpdateQuantity_Bounds(t *testing.T) {
	svc := NewCartService(new(mockCartRepo), new(mockProductRepo))

	_, err := svc.UpdateQuantity(context.Background(), uuid.New(), uuid.New(), validation.UpdateCartRequest{Quantity: 11})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.UpdateQuantity(context.Background(), uuid.New(), uuid.New(), validation.UpdateCartRequest{Quantity: 0})
	assert.True(t, apperror.IsValidation(err))
}

func TestCartService_Remove_Missing(t *testing.T) {
	cart := new(mockCartRepo)
	svc := NewCartService(cart, new(mockProductRepo))

	cart.On("Remove", mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrCartItemNotFound)

	err := svc.Remove(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestCartService_Get_Totals(t *testing.T) {
	cart := new(mockCartRepo)
	svc := NewCartService(cart, new(mockProductRepo))
	userID := uuid.New()

	cart.On("List", mock.Anything, userID).Return([]models.CartLine{
		{Quantity: 2, Price: decimal.NewFromInt(100), ProductStatus: models.ProductStatusApproved},
		{Quantity: 1, Price: decimal.RequireFromString("49.50"), ProductStatus: models.ProductStatusApproved},
	}, nil)

	got, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalItems)
	assert.True(t, decimal.RequireFromString("249.50").Equal(got.Total))
}
