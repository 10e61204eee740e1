package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusConfirmed PurchaseStatus = "confirmed"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// PurchaseRole сторона сделки, запрашивающая переход.
type PurchaseRole string

const (
	RoleBuyer  PurchaseRole = "buyer"
	RoleSeller PurchaseRole = "seller"
)

// purchaseTransitions допустимые рёбра графа статусов и роли, которым они доступны.
var purchaseTransitions = map[PurchaseStatus]map[PurchaseStatus][]PurchaseRole{
	PurchaseStatusPending: {
		PurchaseStatusConfirmed: {RoleSeller},
		PurchaseStatusCancelled: {RoleSeller, RoleBuyer},
	},
	PurchaseStatusConfirmed: {
		PurchaseStatusCompleted: {RoleSeller},
	},
	PurchaseStatusCompleted: {},
	PurchaseStatusCancelled: {},
}

func (s PurchaseStatus) IsValid() bool {
	_, ok := purchaseTransitions[s]
	return ok
}

// IsTerminal сообщает, что из статуса нет переходов.
func (s PurchaseStatus) IsTerminal() bool {
	return len(purchaseTransitions[s]) == 0
}

func (s PurchaseStatus) CanTransitionTo(next PurchaseStatus) bool {
	_, ok := purchaseTransitions[s][next]
	return ok
}

// AllowsRole сообщает, может ли роль выполнить переход s -> next.
func (s PurchaseStatus) AllowsRole(next PurchaseStatus, role PurchaseRole) bool {
	for _, r := range purchaseTransitions[s][next] {
		if r == role {
			return true
		}
	}
	return false
}

// Purchase покупка с зафиксированной ценой.
type Purchase struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	BuyerID         uuid.UUID       `db:"buyer_id" json:"buyer_id"`
	SellerID        uuid.UUID       `db:"seller_id" json:"seller_id"`
	ProductID       *uuid.UUID      `db:"product_id" json:"product_id,omitempty"`
	ProductTitle    string          `db:"product_title" json:"product_title"`
	Price           decimal.Decimal `db:"price" json:"price"`
	Quantity        int             `db:"quantity" json:"quantity"`
	Status          PurchaseStatus  `db:"status" json:"status"`
	ShippingAddress *string         `db:"shipping_address" json:"shipping_address,omitempty"`
	Note            *string         `db:"note" json:"note,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
	CompletedAt     *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

// Total полная стоимость покупки.
func (p *Purchase) Total() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// RoleOf возвращает роль пользователя в сделке или пустую строку.
func (p *Purchase) RoleOf(userID uuid.UUID) PurchaseRole {
	switch userID {
	case p.SellerID:
		return RoleSeller
	case p.BuyerID:
		return RoleBuyer
	}
	return ""
}

// PurchaseView покупка с именами сторон и изображением товара.
type PurchaseView struct {
	Purchase
	BuyerName    string  `db:"buyer_name" json:"buyer_name"`
	SellerName   string  `db:"seller_name" json:"seller_name"`
	PrimaryImage *string `db:"primary_image" json:"primary_image,omitempty"`
}

// PurchaseFilter параметры выборки покупок.
type PurchaseFilter struct {
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   string
	Limit    int
	Offset   int
}
