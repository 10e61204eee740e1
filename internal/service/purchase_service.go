package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/preloved-backend/internal/metrics"
	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// PurchaseRepository хранилище покупок.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
	GetView(ctx context.Context, id uuid.UUID) (*models.PurchaseView, error)
	List(ctx context.Context, filter models.PurchaseFilter) ([]models.PurchaseView, error)
	Transition(ctx context.Context, id uuid.UUID, from, to models.PurchaseStatus) (*models.Purchase, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
}

var purchaseStatusTitles = map[models.PurchaseStatus]string{
	models.PurchaseStatusConfirmed: "Продавец подтвердил покупку",
	models.PurchaseStatusCancelled: "Покупка отменена",
	models.PurchaseStatusCompleted: "Покупка завершена",
}

// PurchaseService оформление покупок и их жизненный цикл.
type PurchaseService struct {
	purchases PurchaseRepository
	products  ProductFinder
	notifier  Notifier
}

func NewPurchaseService(purchases PurchaseRepository, products ProductFinder, notifier Notifier) *PurchaseService {
	return &PurchaseService{purchases: purchases, products: products, notifier: notifier}
}

// Create оформляет покупку одобренного чужого товара по текущей цене.
func (s *PurchaseService) Create(ctx context.Context, buyerID uuid.UUID, req validation.CreatePurchaseRequest) (*models.Purchase, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, translate(err)
	}
	if product.SellerID == buyerID {
		return nil, apperror.ErrOwnProduct
	}
	if !product.IsPurchasable() {
		return nil, apperror.ErrProductUnavailable
	}

	productID := req.ProductID
	purchase := &models.Purchase{
		BuyerID:         buyerID,
		ProductID:       &productID,
		Quantity:        req.Quantity,
		ShippingAddress: req.ShippingAddress,
		Note:            req.Note,
	}
	// Статус товара мог измениться после проверки: вставка условная.
	if err := s.purchases.Create(ctx, purchase); err != nil {
		return nil, translate(err)
	}
	metrics.PurchaseTransitions.WithLabelValues(string(models.PurchaseStatusPending)).Inc()

	s.notifier.Notify(ctx, purchase.SellerID, models.NotificationPurchaseCreated, "Новая покупка", map[string]interface{}{
		"purchase_id":   purchase.ID,
		"product_id":    productID,
		"product_title": purchase.ProductTitle,
		"quantity":      purchase.Quantity,
		"total":         purchase.Total(),
	})
	return purchase, nil
}

// UpdateStatus выполняет переход статуса от имени участника сделки.
func (s *PurchaseService) UpdateStatus(ctx context.Context, userID, id uuid.UUID, req validation.UpdatePurchaseStatusRequest) (*models.Purchase, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	next := models.PurchaseStatus(req.Status)

	current, err := s.purchases.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	role := current.RoleOf(userID)
	if role == "" {
		return nil, apperror.ErrForbidden
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, apperror.ErrIllegalTransition
	}
	if !current.Status.AllowsRole(next, role) {
		return nil, apperror.ErrForbidden
	}

	var updated *models.Purchase
	if next == models.PurchaseStatusCompleted {
		updated, err = s.purchases.Complete(ctx, id)
	} else {
		updated, err = s.purchases.Transition(ctx, id, current.Status, next)
	}
	if err != nil {
		return nil, translate(err)
	}
	metrics.PurchaseTransitions.WithLabelValues(string(next)).Inc()

	s.notifier.Notify(ctx, counterpart(updated, userID), models.NotificationPurchaseStatus, purchaseStatusTitles[next], map[string]interface{}{
		"purchase_id":   updated.ID,
		"product_title": updated.ProductTitle,
		"status":        updated.Status,
	})
	return updated, nil
}

// Get возвращает покупку участнику сделки или администратору.
func (s *PurchaseService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.PurchaseView, error) {
	view, err := s.purchases.GetView(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !actor.IsAdmin && view.RoleOf(actor.ID) == "" {
		return nil, apperror.ErrForbidden
	}
	return view, nil
}

// ListAsBuyer покупки пользователя.
func (s *PurchaseService) ListAsBuyer(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.PurchaseView, error) {
	return s.list(ctx, models.PurchaseFilter{BuyerID: &userID, Status: status, Limit: limit, Offset: offset})
}

// ListAsSeller продажи пользователя.
func (s *PurchaseService) ListAsSeller(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.PurchaseView, error) {
	return s.list(ctx, models.PurchaseFilter{SellerID: &userID, Status: status, Limit: limit, Offset: offset})
}

// ListAll все покупки для администратора.
func (s *PurchaseService) ListAll(ctx context.Context, status string, limit, offset int) ([]models.PurchaseView, error) {
	return s.list(ctx, models.PurchaseFilter{Status: status, Limit: limit, Offset: offset})
}

func (s *PurchaseService) list(ctx context.Context, filter models.PurchaseFilter) ([]models.PurchaseView, error) {
	if filter.Status != "" && !models.PurchaseStatus(filter.Status).IsValid() {
		return nil, apperror.Validation([]apperror.FieldError{{Field: "status", Message: "недопустимый статус"}})
	}
	items, err := s.purchases.List(ctx, filter)
	return items, translate(err)
}

func counterpart(p *models.Purchase, userID uuid.UUID) uuid.UUID {
	if p.BuyerID == userID {
		return p.SellerID
	}
	return p.BuyerID
}
