package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/preloved-backend/internal/metrics"
	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// ChatRepository хранилище чатов и сообщений.
type ChatRepository interface {
	GetOrCreateRoom(ctx context.Context, buyerID, sellerID, productID uuid.UUID) (*models.ChatRoom, bool, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error)
	ListRooms(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ChatRoomSummary, error)
	ListMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]models.Message, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	MarkRead(ctx context.Context, roomID, readerID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
}

// RoomPublisher рассылает событие подписчикам чата.
type RoomPublisher interface {
	PublishToRoom(roomID uuid.UUID, event string, payload interface{})
}

// События канала чата.
const (
	EventMessage  = "message"
	EventMessages = "messages_read"
)

// MessageEvent полезная нагрузка события о новом сообщении.
type MessageEvent struct {
	RoomID  uuid.UUID       `json:"room_id"`
	Message *models.Message `json:"message"`
}

// StartedRoom результат открытия чата.
type StartedRoom struct {
	Room    *models.ChatRoom `json:"room"`
	Created bool             `json:"created"`
}

var errNotParticipant = apperror.Forbidden("вы не участник этого чата")

// ChatService переписка покупателя и продавца.
type ChatService struct {
	chats     ChatRepository
	products  ProductFinder
	publisher RoomPublisher
	notifier  Notifier
}

func NewChatService(chats ChatRepository, products ProductFinder, publisher RoomPublisher, notifier Notifier) *ChatService {
	return &ChatService{chats: chats, products: products, publisher: publisher, notifier: notifier}
}

// StartRoom открывает чат с продавцом товара; повторный вызов возвращает тот же чат.
func (s *ChatService) StartRoom(ctx context.Context, buyerID, productID uuid.UUID) (*StartedRoom, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, translate(err)
	}
	if product.SellerID == buyerID {
		return nil, apperror.ErrOwnProduct
	}

	room, created, err := s.chats.GetOrCreateRoom(ctx, buyerID, product.SellerID, productID)
	if err != nil {
		return nil, translate(err)
	}
	return &StartedRoom{Room: room, Created: created}, nil
}

func (s *ChatService) ListRooms(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ChatRoomSummary, error) {
	rooms, err := s.chats.ListRooms(ctx, userID, limit, offset)
	return rooms, translate(err)
}

// Messages возвращает страницу сообщений и отмечает входящие прочитанными.
func (s *ChatService) Messages(ctx context.Context, userID, roomID uuid.UUID, limit, offset int) ([]models.Message, error) {
	if _, err := s.participantRoom(ctx, userID, roomID); err != nil {
		return nil, err
	}

	messages, err := s.chats.ListMessages(ctx, roomID, limit, offset)
	if err != nil {
		return nil, translate(err)
	}
	if _, err := s.markRead(ctx, userID, roomID); err != nil {
		return nil, err
	}
	return messages, nil
}

// Send сохраняет сообщение и после фиксации рассылает его участникам.
func (s *ChatService) Send(ctx context.Context, userID, roomID uuid.UUID, req validation.SendMessageRequest) (*models.Message, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	room, err := s.participantRoom(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{RoomID: roomID, SenderID: userID, Content: req.Content}
	if err := s.chats.CreateMessage(ctx, message); err != nil {
		return nil, translate(err)
	}
	metrics.MessagesSent.Inc()

	s.publisher.PublishToRoom(roomID, EventMessage, MessageEvent{RoomID: roomID, Message: message})
	s.notifier.Notify(ctx, room.Counterpart(userID), models.NotificationNewMessage, "Новое сообщение", map[string]interface{}{
		"room_id":    roomID,
		"message_id": message.ID,
		"sender_id":  userID,
		"product_id": room.ProductID,
	})
	return message, nil
}

// MarkRead отмечает входящие сообщения чата прочитанными.
func (s *ChatService) MarkRead(ctx context.Context, userID, roomID uuid.UUID) (int64, error) {
	if _, err := s.participantRoom(ctx, userID, roomID); err != nil {
		return 0, err
	}
	return s.markRead(ctx, userID, roomID)
}

func (s *ChatService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.chats.UnreadCount(ctx, userID)
	return n, translate(err)
}

// CanJoinRoom проверяет право подписки на события чата.
func (s *ChatService) CanJoinRoom(ctx context.Context, userID, roomID uuid.UUID) (bool, error) {
	ok, err := s.chats.IsParticipant(ctx, roomID, userID)
	return ok, translate(err)
}

func (s *ChatService) markRead(ctx context.Context, userID, roomID uuid.UUID) (int64, error) {
	n, err := s.chats.MarkRead(ctx, roomID, userID)
	if err != nil {
		return 0, translate(err)
	}
	if n > 0 {
		s.publisher.PublishToRoom(roomID, EventMessages, map[string]interface{}{
			"room_id":   roomID,
			"reader_id": userID,
		})
	}
	return n, nil
}

func (s *ChatService) participantRoom(ctx context.Context, userID, roomID uuid.UUID) (*models.ChatRoom, error) {
	room, err := s.chats.GetRoom(ctx, roomID)
	if err != nil {
		return nil, translate(err)
	}
	if !room.HasParticipant(userID) {
		return nil, errNotParticipant
	}
	return room, nil
}
