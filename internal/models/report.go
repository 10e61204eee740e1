package models

import (
	"time"

	"github.com/google/uuid"
)

// reportTransitions движение жалобы только вперёд.
var reportTransitions = map[string][]string{
	ReportStatusPending:  {ReportStatusReviewed, ReportStatusResolved, ReportStatusDismissed},
	ReportStatusReviewed: {ReportStatusResolved, ReportStatusDismissed},
}

// CanAdvanceReport проверяет допустимость перехода статуса жалобы.
func CanAdvanceReport(from, to string) bool {
	for _, s := range reportTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Report struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	ReporterID        uuid.UUID  `db:"reporter_id" json:"reporter_id"`
	ReportedUserID    *uuid.UUID `db:"reported_user_id" json:"reported_user_id,omitempty"`
	ReportedProductID *uuid.UUID `db:"reported_product_id" json:"reported_product_id,omitempty"`
	ReportedMessageID *uuid.UUID `db:"reported_message_id" json:"reported_message_id,omitempty"`
	Reason            string     `db:"reason" json:"reason"`
	Description       *string    `db:"description" json:"description,omitempty"`
	Status            string     `db:"status" json:"status"`
	AdminNote         *string    `db:"admin_note" json:"admin_note,omitempty"`
	ReviewedBy        *uuid.UUID `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// ReportView жалоба с именем автора для админки.
type ReportView struct {
	Report
	ReporterName string `db:"reporter_name" json:"reporter_name"`
}
