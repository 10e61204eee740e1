package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

type chatFixture struct {
	chats     *mockChatRepo
	products  *mockProductRepo
	publisher *mockRoomPublisher
	notifier  *mockNotifier
	svc       *ChatService
	room      *models.ChatRoom
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		chats:     new(mockChatRepo),
		products:  new(mockProductRepo),
		publisher: new(mockRoomPublisher),
		notifier:  new(mockNotifier),
		room:      &models.ChatRoom{ID: uuid.New(), BuyerID: uuid.New(), SellerID: uuid.New(), ProductID: uuid.New()},
	}
	f.svc = NewChatService(f.chats, f.products, f.publisher, f.notifier)
	f.chats.On("GetRoom", mock.Anything, f.room.ID).Return(f.room, nil)
	return f
}

func TestChatService_StartRoom(t *testing.T) {
	f := newChatFixture()
	product := &models.Product{ID: f.room.ProductID, SellerID: f.room.SellerID}
	f.products.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	f.chats.On("GetOrCreateRoom", mock.Anything, f.room.BuyerID, f.room.SellerID, product.ID).Return(f.room, false, nil)

	started, err := f.svc.StartRoom(context.Background(), f.room.BuyerID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, f.room.ID, started.Room.ID)
	assert.False(t, started.Created)
}

func TestChatService_StartRoom_OwnProduct(t *testing.T) {
	f := newChatFixture()
	product := &models.Product{ID: f.room.ProductID, SellerID: f.room.SellerID}
	f.products.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	_, err := f.svc.StartRoom(context.Background(), f.room.SellerID, product.ID)
	assert.ErrorIs(t, err, apperror.ErrOwnProduct)
}

func TestChatService_Send_NotParticipant(t *testing.T) {
	f := newChatFixture()

	_, err := f.svc.Send(context.Background(), uuid.New(), f.room.ID, validation.SendMessageRequest{Content: "привет"})
	assert.True(t, apperror.IsForbidden(err))
	f.chats.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "PublishToRoom", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_Send_BlankContent(t *testing.T) {
	f := newChatFixture()

	_, err := f.svc.Send(context.Background(), f.room.BuyerID, f.room.ID, validation.SendMessageRequest{Content: "   "})
	assert.True(t, apperror.IsValidation(err))
}

func TestChatService_Send_PublishesAndNotifies(t *testing.T) {
	f := newChatFixture()
	f.chats.On("CreateMessage", mock.Anything, mock.MatchedBy(func(m *models.Message) bool {
		return m.SenderID == f.room.BuyerID && m.Content == "Ещё продаёте?"
	})).Return(nil)
	f.publisher.On("PublishToRoom", f.room.ID, EventMessage, mock.AnythingOfType("service.MessageEvent")).Return()
	f.notifier.On("Notify", mock.Anything, f.room.SellerID, models.NotificationNewMessage, mock.Anything, mock.Anything).Return()

	msg, err := f.svc.Send(context.Background(), f.room.BuyerID, f.room.ID, validation.SendMessageRequest{Content: "  Ещё продаёте? "})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, msg.ID)
	f.publisher.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestChatService_Messages_MarksIncomingRead(t *testing.T) {
	f := newChatFixture()
	f.chats.On("ListMessages", mock.Anything, f.room.ID, 50, 0).Return([]models.Message{{ID: uuid.New()}}, nil)
	f.chats.On("MarkRead", mock.Anything, f.room.ID, f.room.SellerID).Return(int64(1), nil)
	f.publisher.On("PublishToRoom", f.room.ID, EventMessages, mock.Anything).Return()

	messages, err := f.svc.Messages(context.Background(), f.room.SellerID, f.room.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
	f.publisher.AssertExpectations(t)
}

func TestChatService_MarkRead_NothingNew(t *testing.T) {
	f := newChatFixture()
	f.chats.On("MarkRead", mock.Anything, f.room.ID, f.room.BuyerID).Return(int64(0), nil)

	n, err := f.svc.MarkRead(context.Background(), f.room.BuyerID, f.room.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	f.publisher.AssertNotCalled(t, "PublishToRoom", mock.Anything, mock.Anything, mock.Anything)
}
