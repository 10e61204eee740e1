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
	"github.com/ignatzorin/preloved-backend/internal/repository/common"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

func newPurchase(status models.PurchaseStatus) *models.Purchase {
	productID := uuid.New()
	return &models.Purchase{
		ID:           uuid.New(),
		BuyerID:      uuid.New(),
		SellerID:     uuid.New(),
		ProductID:    &productID,
		ProductTitle: "Куртка",
		Price:        decimal.NewFromInt(1500),
		Quantity:     1,
		Status:       status,
	}
}

func TestPurchaseService_Create_Success(t *testing.T) {
	purchases := new(mockPurchaseRepo)
	products := new(mockProductRepo)
	notifier := new(mockNotifier)
	svc := NewPurchaseService(purchases, products, notifier)

	buyerID := uuid.New()
	product := &models.Product{ID: uuid.New(), SellerID: uuid.New(), Status: models.ProductStatusApproved}
	products.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	purchases.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Purchase) bool {
		return p.BuyerID == buyerID && p.Quantity == 1
	})).Run(func(args mock.Arguments) {
		p := args.Get(1).(*models.Purchase)
		p.SellerID = product.SellerID
	}).Return(nil)
	notifier.On("Notify", mock.Anything, product.SellerID, models.NotificationPurchaseCreated, mock.Anything, mock.Anything).Return()

	purchase, err := svc.Create(context.Background(), buyerID, validation.CreatePurchaseRequest{ProductID: product.ID})
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusPending, purchase.Status)
	notifier.AssertExpectations(t)
}

func TestPurchaseService_Create_OwnProduct(t *testing.T) {
	purchases := new(mockPurchaseRepo)
	products := new(mockProductRepo)
	svc := NewPurchaseService(purchases, products, new(mockNotifier))

	sellerID := uuid.New()
	product := &models.Product{ID: uuid.New(), SellerID: sellerID, Status: models.ProductStatusApproved}
	products.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	_, err := svc.Create(context.Background(), sellerID, validation.CreatePurchaseRequest{ProductID: product.ID})
	assert.ErrorIs(t, err, apperror.ErrOwnProduct)
	purchases.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPurchaseService_Create_NotApproved(t *testing.T) {
	products := new(mockProductRepo)
	svc := NewPurchaseService(new(mockPurchaseRepo), products, new(mockNotifier))

	product := &models.Product{ID: uuid.New(), SellerID: uuid.New(), Status: models.ProductStatusSold}
	products.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	_, err := svc.Create(context.Background(), uuid.New(), validation.CreatePurchaseRequest{ProductID: product.ID})
	assert.ErrorIs(t, err, apperror.ErrProductUnavailable)
}

func TestPurchaseService_Create_LostRace(t *testing.T) {
	purchases := new(mockPurchaseRepo)
	products := new(mockProductRepo)
	svc := NewPurchaseService(purchases, products, new(mockNotifier))

	product := &models.Product{ID: uuid.New(), SellerID: uuid.New(), Status: models.ProductStatusApproved}
	products.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	purchases.On("Create", mock.Anything, mock.Anything).Return(repository.ErrProductUnavailable)

	_, err := svc.Create(context.Background(), uuid.New(), validation.CreatePurchaseRequest{ProductID: product.ID})
	assert.ErrorIs(t, err, apperror.ErrProductUnavailable)
}

func TestPurchaseService_UpdateStatus_Rules(t *testing.T) {
	tests := []struct {
		name    string
		current models.PurchaseStatus
		next    string
		seller  bool
		wantErr error
	}{
		{"buyer cannot confirm", models.PurchaseStatusPending, "confirmed", false, apperror.ErrForbidden},
		{"buyer cannot complete", models.PurchaseStatusConfirmed, "completed", false, apperror.ErrForbidden},
		{"pending cannot complete", models.PurchaseStatusPending, "completed", true, apperror.ErrIllegalTransition},
		{"confirmed cannot cancel", models.PurchaseStatusConfirmed, "cancelled", true, apperror.ErrIllegalTransition},
		{"terminal stays terminal", models.PurchaseStatusCancelled, "confirmed", true, apperror.ErrIllegalTransition},
		{"completed stays completed", models.PurchaseStatusCompleted, "cancelled", false, apperror.ErrIllegalTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			purchases := new(mockPurchaseRepo)
			svc := NewPurchaseService(purchases, new(mockProductRepo), new(mockNotifier))

			purchase := newPurchase(tt.current)
			purchases.On("GetByID", mock.Anything, purchase.ID).Return(purchase, nil)

			actor := purchase.BuyerID
			if tt.seller {
				actor = purchase.SellerID
			}

			_, err := svc.UpdateStatus(context.Background(), actor, purchase.ID, validation.UpdatePurchaseStatusRequest{Status: tt.next})
			assert.ErrorIs(t, err, tt.wantErr)
			purchases.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			purchases.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		})
	}
}

func TestPurchaseService_UpdateStatus_Stranger(t *testing.T) {
	purchases := new(mockPurchaseRepo)
	svc := NewPurchaseService(purchases, new(mockProductRepo), new(mockNotifier))

	purchase := newPurchase(models.PurchaseStatusPending)
	purchases.On("GetByID", mock.Anything, purchase.ID).Return(purchase, nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), purchase.ID, validation.UpdatePurchaseStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestPurchaseService_UpdateStatus_BuyerCancels(t *testing.T) {
	purchases := new(mockPurchaseRepo)
	notifier := new(mockNotifier)
	svc := NewPurchaseService(purchases, new(mockProductRepo), notifier)

	purchase := newPurchase(models.PurchaseStatusPending)
	cancelled := *purchase
	cancelled.Status = models.PurchaseStatusCancelled

	purchases.On("GetByID", mock.Anything, purchase.ID).Return(purchase, nil)
	purchases.On("Transition", mock.Anything, purchase.ID, models.PurchaseStatusPending, models.PurchaseStatusCancelled).Return(&cancelled, nil)
	notifier.On("Notify", mock.Anything, purchase.SellerID, models.NotificationPurchaseStatus, mock.Anything, mock.Anything).Return()

	updated, err := svc.UpdateStatus(context.Background(), purchase.BuyerID, purchase.ID, validation.UpdatePurchaseStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusCancelled, updated.Status)
	notifier.AssertExpectations(t)
}

func TestPurchaseService_UpdateStatus_SellerCompletes(t *testing.T) {
	purchases := new(mockPurchaseRepo)
	notifier := new(mockNotifier)
	svc := NewPurchaseService(purchases, new(mockProductRepo), notifier)

	purchase := newPurchase(models.PurchaseStatusConfirmed)
	completed := *purchase
	completed.Status = models.PurchaseStatusCompleted

	purchases.On("GetByID", mock.Anything, purchase.ID).Return(purchase, nil)
	purchases.On("Complete", mock.Anything, purchase.ID).Return(&completed, nil)
	notifier.On("Notify", mock.Anything, purchase.BuyerID, models.NotificationPurchaseStatus, "Покупка завершена", mock.Anything).Return()

	updated, err := svc.UpdateStatus(context.Background(), purchase.SellerID, purchase.ID, validation.UpdatePurchaseStatusRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusCompleted, updated.Status)
	purchases.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	notifier.AssertExpectations(t)
}

func TestPurchaseService_UpdateStatus_ProductAlreadySold(t *testing.T) {
	purchases := new(mockPurchaseRepo)
	notifier := new(mockNotifier)
	svc := NewPurchaseService(purchases, new(mockProductRepo), notifier)

	purchase := newPurchase(models.PurchaseStatusConfirmed)
	purchases.On("GetByID", mock.Anything, purchase.ID).Return(purchase, nil)
	purchases.On("Complete", mock.Anything, purchase.ID).Return(nil, repository.ErrProductUnavailable)

	_, err := svc.UpdateStatus(context.Background(), purchase.SellerID, purchase.ID, validation.UpdatePurchaseStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, apperror.ErrProductUnavailable)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseService_UpdateStatus_ConcurrentChange(t *testing.T) {
	purchases := new(mockPurchaseRepo)
	notifier := new(mockNotifier)
	svc := NewPurchaseService(purchases, new(mockProductRepo), notifier)

	purchase := newPurchase(models.PurchaseStatusPending)
	purchases.On("GetByID", mock.Anything, purchase.ID).Return(purchase, nil)
	purchases.On("Transition", mock.Anything, purchase.ID, models.PurchaseStatusPending, models.PurchaseStatusConfirmed).Return(nil, common.ErrStatusConflict)

	_, err := svc.UpdateStatus(context.Background(), purchase.SellerID, purchase.ID, validation.UpdatePurchaseStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, errStatusChanged)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseService_Get_Visibility(t *testing.T) {
	purchases := new(mockPurchaseRepo)
	svc := NewPurchaseService(purchases, new(mockProductRepo), new(mockNotifier))

	view := &models.PurchaseView{Purchase: *newPurchase(models.PurchaseStatusPending)}
	purchases.On("GetView", mock.Anything, view.ID).Return(view, nil)

	_, err := svc.Get(context.Background(), Actor{ID: uuid.New()}, view.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	got, err := svc.Get(context.Background(), Actor{ID: uuid.New(), IsAdmin: true}, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)

	_, err = svc.Get(context.Background(), Actor{ID: view.BuyerID}, view.ID)
	assert.NoError(t, err)
}

func TestPurchaseService_List_InvalidStatus(t *testing.T) {
	svc := NewPurchaseService(new(mockPurchaseRepo), new(mockProductRepo), new(mockNotifier))

	_, err := svc.ListAsBuyer(context.Background(), uuid.New(), "shipped", 20, 0)
	assert.True(t, apperror.IsValidation(err))
}
