package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.ReportView, error)
	Advance(ctx context.Context, id uuid.UUID, from []string, to string, adminID uuid.UUID, note *string) (*models.Report, error)
}

// MessageLookup доступ к сообщениям для жалоб.
type MessageLookup interface {
	GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error)
	IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
}

var errSelfReport = apperror.Conflict("нельзя пожаловаться на себя")

type ReportService struct {
	reports  ReportRepository
	users    UserFinder
	products ProductFinder
	messages MessageLookup
	notifier Notifier
}

func NewReportService(reports ReportRepository, users UserFinder, products ProductFinder, messages MessageLookup, notifier Notifier) *ReportService {
	return &ReportService{reports: reports, users: users, products: products, messages: messages, notifier: notifier}
}

// Create регистрирует жалобу ровно на один объект.
// Жалоба на сообщение дополнительно указывает его автора.
func (s *ReportService) Create(ctx context.Context, reporterID uuid.UUID, req validation.CreateReportRequest) (*models.Report, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	report := &models.Report{
		ReporterID:  reporterID,
		Reason:      req.Reason,
		Description: req.Description,
	}

	switch {
	case req.ReportedUserID != nil:
		if _, err := s.users.GetByID(ctx, *req.ReportedUserID); err != nil {
			return nil, translate(err)
		}
		report.ReportedUserID = req.ReportedUserID

	case req.ReportedProductID != nil:
		product, err := s.products.GetByID(ctx, *req.ReportedProductID)
		if err != nil {
			return nil, translate(err)
		}
		if product.SellerID == reporterID {
			return nil, errSelfReport
		}
		report.ReportedProductID = req.ReportedProductID

	case req.ReportedMessageID != nil:
		message, err := s.messages.GetMessage(ctx, *req.ReportedMessageID)
		if err != nil {
			return nil, translate(err)
		}
		ok, err := s.messages.IsParticipant(ctx, message.RoomID, reporterID)
		if err != nil {
			return nil, translate(err)
		}
		if !ok {
			return nil, errNotParticipant
		}
		sender := message.SenderID
		report.ReportedMessageID = req.ReportedMessageID
		report.ReportedUserID = &sender
	}

	if report.ReportedUserID != nil && *report.ReportedUserID == reporterID {
		return nil, errSelfReport
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, translate(err)
	}
	return report, nil
}

func (s *ReportService) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Report, error) {
	items, err := s.reports.ListByReporter(ctx, userID, limit, offset)
	return items, translate(err)
}

// List жалобы для модерации, старые сначала.
func (s *ReportService) List(ctx context.Context, status string, limit, offset int) ([]models.ReportView, error) {
	if status != "" {
		if _, ok := models.ValidReportStatuses[status]; !ok {
			return nil, apperror.Validation([]apperror.FieldError{{Field: "status", Message: "недопустимый статус"}})
		}
	}
	items, err := s.reports.List(ctx, status, limit, offset)
	return items, translate(err)
}

// Advance продвигает жалобу вперёд по статусам и уведомляет автора.
func (s *ReportService) Advance(ctx context.Context, adminID, id uuid.UUID, req validation.UpdateReportStatusRequest) (*models.Report, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	current, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !models.CanAdvanceReport(current.Status, req.Status) {
		return nil, apperror.ErrIllegalTransition
	}

	report, err := s.reports.Advance(ctx, id, []string{current.Status}, req.Status, adminID, req.AdminNote)
	if err != nil {
		return nil, translate(err)
	}

	s.notifier.Notify(ctx, report.ReporterID, models.NotificationReportUpdated, "Статус жалобы изменён", map[string]interface{}{
		"report_id": report.ID,
		"status":    report.Status,
	})
	return report, nil
}
