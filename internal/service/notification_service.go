package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/preloved-backend/internal/logger"
	"github.com/ignatzorin/preloved-backend/internal/metrics"
	"github.com/ignatzorin/preloved-backend/internal/models"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// UserPublisher доставляет событие в персональный канал пользователя.
type UserPublisher interface {
	PublishToUser(userID uuid.UUID, event string, payload interface{})
}

// Notifier отправляет уведомления; ошибки доставки только логируются.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title string, data interface{})
}

// EventNotification имя события уведомления в канале пользователя.
const EventNotification = "notification"

// NotificationService содержит бизнес-логику работы с уведомлениями.
type NotificationService struct {
	repo      NotificationRepository
	publisher UserPublisher
}

// NewNotificationService создаёт новый сервис уведомлений. publisher может быть nil.
func NewNotificationService(repo NotificationRepository, publisher UserPublisher) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher}
}

// Create сохраняет уведомление и отправляет его в канал пользователя.
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, kind, title string, data interface{}) (*models.Notification, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Payload: payload,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, translate(err)
	}

	if s.publisher != nil {
		s.publisher.PublishToUser(userID, EventNotification, notification)
	}
	return notification, nil
}

// Notify вызывается после фиксации основной операции, поэтому ошибка не возвращается.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, kind, title string, data interface{}) {
	if _, err := s.Create(ctx, userID, kind, title, data); err != nil {
		metrics.NotificationFailures.Inc()
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"type":    kind,
			"error":   err,
		}).Error("notification service: не удалось сохранить уведомление")
	}
}

// List возвращает уведомления пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	items, err := s.repo.List(ctx, userID, limit, offset, unreadOnly)
	return items, translate(err)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return translate(s.repo.MarkAsRead(ctx, id, userID))
}

// MarkAllAsRead возвращает число отмеченных уведомлений.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID)
	return n, translate(err)
}

func (s *NotificationService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return translate(s.repo.Delete(ctx, id, userID))
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	return n, translate(err)
}
