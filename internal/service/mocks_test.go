package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/preloved-backend/internal/models"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *models.Product, imageURLs []string) ([]models.ProductImage, error) {
	args := m.Called(ctx, product, imageURLs)
	if args.Error(1) == nil {
		product.ID = uuid.New()
	}
	images, _ := args.Get(0).([]models.ProductImage)
	return images, args.Error(1)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) List(ctx context.Context, filter models.ProductFilter) ([]models.ProductListItem, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]models.ProductListItem)
	return items, args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, id uuid.UUID, upd models.ProductUpdate) (*models.Product, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string, reason *string) (*models.Product, error) {
	args := m.Called(ctx, id, from, to, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	args := m.Called(ctx, id)
	urls, _ := args.Get(0).([]string)
	return urls, args.Error(1)
}

func (m *mockProductRepo) ListImages(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	args := m.Called(ctx, productID)
	images, _ := args.Get(0).([]models.ProductImage)
	return images, args.Error(1)
}

func (m *mockProductRepo) AddImage(ctx context.Context, productID uuid.UUID, url string, maxImages int) (*models.ProductImage, error) {
	args := m.Called(ctx, productID, url, maxImages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductImage), args.Error(1)
}

func (m *mockProductRepo) SetPrimaryImage(ctx context.Context, productID, imageID uuid.UUID) error {
	return m.Called(ctx, productID, imageID).Error(0)
}

func (m *mockProductRepo) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) (string, error) {
	args := m.Called(ctx, productID, imageID)
	return args.String(0), args.Error(1)
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Save(ctx context.Context, productID uuid.UUID, originalName string, r io.Reader) (string, error) {
	args := m.Called(ctx, productID, originalName, r)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) Remove(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *mockCartRepo) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *mockCartRepo) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *mockCartRepo) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCartRepo) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockCartRepo) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCartRepo) List(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]models.CartLine)
	return lines, args.Error(1)
}

type mockPurchaseRepo struct {
	mock.Mock
}

func (m *mockPurchaseRepo) Create(ctx context.Context, purchase *models.Purchase) error {
	args := m.Called(ctx, purchase)
	if args.Error(0) == nil {
		purchase.ID = uuid.New()
		purchase.Status = models.PurchaseStatusPending
	}
	return args.Error(0)
}

func (m *mockPurchaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

func (m *mockPurchaseRepo) GetView(ctx context.Context, id uuid.UUID) (*models.PurchaseView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseView), args.Error(1)
}

func (m *mockPurchaseRepo) List(ctx context.Context, filter models.PurchaseFilter) ([]models.PurchaseView, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]models.PurchaseView)
	return items, args.Error(1)
}

func (m *mockPurchaseRepo) Transition(ctx context.Context, id uuid.UUID, from, to models.PurchaseStatus) (*models.Purchase, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

func (m *mockPurchaseRepo) Complete(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

type mockChatRepo struct {
	mock.Mock
}

func (m *mockChatRepo) GetOrCreateRoom(ctx context.Context, buyerID, sellerID, productID uuid.UUID) (*models.ChatRoom, bool, error) {
	args := m.Called(ctx, buyerID, sellerID, productID)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.ChatRoom), args.Bool(1), args.Error(2)
}

func (m *mockChatRepo) GetRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *mockChatRepo) ListRooms(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ChatRoomSummary, error) {
	args := m.Called(ctx, userID, limit, offset)
	rooms, _ := args.Get(0).([]models.ChatRoomSummary)
	return rooms, args.Error(1)
}

func (m *mockChatRepo) ListMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, roomID, limit, offset)
	messages, _ := args.Get(0).([]models.Message)
	return messages, args.Error(1)
}

func (m *mockChatRepo) CreateMessage(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	if args.Error(0) == nil {
		message.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockChatRepo) MarkRead(ctx context.Context, roomID, readerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, roomID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockChatRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockChatRepo) IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockChatRepo) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

type mockUserFinder struct {
	mock.Mock
}

func (m *mockUserFinder) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockCategoryFinder struct {
	mock.Mock
}

func (m *mockCategoryFinder) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, userID uuid.UUID, kind, title string, data interface{}) {
	m.Called(ctx, userID, kind, title, data)
}

type mockRoomPublisher struct {
	mock.Mock
}

func (m *mockRoomPublisher) PublishToRoom(roomID uuid.UUID, event string, payload interface{}) {
	m.Called(roomID, event, payload)
}
