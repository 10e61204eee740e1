package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardStats сводка для админ-панели.
type DashboardStats struct {
	TotalUsers         int             `db:"total_users" json:"total_users"`
	ActiveUsers        int             `db:"active_users" json:"active_users"`
	TotalProducts      int             `db:"total_products" json:"total_products"`
	PendingProducts    int             `db:"pending_products" json:"pending_products"`
	ApprovedProducts   int             `db:"approved_products" json:"approved_products"`
	SoldProducts       int             `db:"sold_products" json:"sold_products"`
	TotalPurchases     int             `db:"total_purchases" json:"total_purchases"`
	PendingPurchases   int             `db:"pending_purchases" json:"pending_purchases"`
	CompletedPurchases int             `db:"completed_purchases" json:"completed_purchases"`
	TotalRevenue       decimal.Decimal `db:"total_revenue" json:"total_revenue"`
	PendingReports     int             `db:"pending_reports" json:"pending_reports"`
}

// AnalyticsPoint значение метрик за один интервал.
type AnalyticsPoint struct {
	Bucket             time.Time       `db:"bucket" json:"bucket"`
	NewUsers           int             `db:"new_users" json:"new_users"`
	NewListings        int             `db:"new_listings" json:"new_listings"`
	CompletedPurchases int             `db:"completed_purchases" json:"completed_purchases"`
	Revenue            decimal.Decimal `db:"revenue" json:"revenue"`
}

// TopSeller продавец в рейтинге по завершённым продажам.
type TopSeller struct {
	SellerID   uuid.UUID       `db:"seller_id" json:"seller_id"`
	FullName   string          `db:"full_name" json:"full_name"`
	AvatarURL  *string         `db:"avatar_url" json:"avatar_url,omitempty"`
	SalesCount int             `db:"sales_count" json:"sales_count"`
	Revenue    decimal.Decimal `db:"revenue" json:"revenue"`
}

// Интервалы агрегации аналитики.
const (
	BucketDay   = "day"
	BucketWeek  = "week"
	BucketMonth = "month"
)

var ValidBuckets = map[string]struct{}{
	BucketDay:   {},
	BucketWeek:  {},
	BucketMonth: {},
}
