package models

// ProductStatus константы статусов объявления
const (
	ProductStatusPending  = "pending"
	ProductStatusApproved = "approved"
	ProductStatusRejected = "rejected"
	ProductStatusSold     = "sold"
	ProductStatusInactive = "inactive"
)

// ProductCondition константы состояния товара
const (
	ConditionNew     = "new"
	ConditionLikeNew = "like_new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
)

// ProductSort варианты сортировки каталога
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortPopular   = "popular"
)

// ReportStatus константы статусов жалоб
const (
	ReportStatusPending   = "pending"
	ReportStatusReviewed  = "reviewed"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

// ReportReason допустимые причины жалоб
const (
	ReportReasonSpam          = "spam"
	ReportReasonFraud         = "fraud"
	ReportReasonInappropriate = "inappropriate"
	ReportReasonCounterfeit   = "counterfeit"
	ReportReasonHarassment    = "harassment"
	ReportReasonOther         = "other"
)

// NotificationType типы уведомлений
const (
	NotificationPurchaseCreated = "purchase_created"
	NotificationPurchaseStatus  = "purchase_status"
	NotificationProductApproved = "product_approved"
	NotificationProductRejected = "product_rejected"
	NotificationReportUpdated   = "report_updated"
	NotificationNewMessage      = "new_message"
)

// Границы количества в корзине и покупке.
const (
	MinQuantity = 1
	MaxQuantity = 10
)

// ValidProductStatuses список валидных статусов объявления
var ValidProductStatuses = map[string]struct{}{
	ProductStatusPending:  {},
	ProductStatusApproved: {},
	ProductStatusRejected: {},
	ProductStatusSold:     {},
	ProductStatusInactive: {},
}

// ValidConditions список валидных состояний товара
var ValidConditions = map[string]struct{}{
	ConditionNew:     {},
	ConditionLikeNew: {},
	ConditionGood:    {},
	ConditionFair:    {},
	ConditionPoor:    {},
}

// ValidProductSorts список поддерживаемых сортировок
var ValidProductSorts = map[string]struct{}{
	SortNewest:    {},
	SortOldest:    {},
	SortPriceAsc:  {},
	SortPriceDesc: {},
	SortPopular:   {},
}

// ValidPurchaseStatuses список валидных статусов покупки
var ValidPurchaseStatuses = map[string]struct{}{
	string(PurchaseStatusPending):   {},
	string(PurchaseStatusConfirmed): {},
	string(PurchaseStatusCompleted): {},
	string(PurchaseStatusCancelled): {},
}

// ValidReportStatuses список валидных статусов жалоб
var ValidReportStatuses = map[string]struct{}{
	ReportStatusPending:   {},
	ReportStatusReviewed:  {},
	ReportStatusResolved:  {},
	ReportStatusDismissed: {},
}

// ValidReportReasons список валидных причин жалоб
var ValidReportReasons = map[string]struct{}{
	ReportReasonSpam:          {},
	ReportReasonFraud:         {},
	ReportReasonInappropriate: {},
	ReportReasonCounterfeit:   {},
	ReportReasonHarassment:    {},
	ReportReasonOther:         {},
}
