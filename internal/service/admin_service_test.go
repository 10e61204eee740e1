package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/repository/common"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

type mockAdminStats struct {
	mock.Mock
}

func (m *mockAdminStats) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func (m *mockAdminStats) Analytics(ctx context.Context, bucket string, days int) ([]models.AnalyticsPoint, error) {
	args := m.Called(ctx, bucket, days)
	points, _ := args.Get(0).([]models.AnalyticsPoint)
	return points, args.Error(1)
}

func (m *mockAdminStats) TopSellers(ctx context.Context, limit int) ([]models.TopSeller, error) {
	args := m.Called(ctx, limit)
	sellers, _ := args.Get(0).([]models.TopSeller)
	return sellers, args.Error(1)
}

type mockAdminUsers struct {
	mock.Mock
}

func (m *mockAdminUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAdminUsers) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *mockAdminUsers) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *mockAdminUsers) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	return m.Called(ctx, id, verified).Error(0)
}

func (m *mockAdminUsers) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type adminFixture struct {
	stats    *mockAdminStats
	users    *mockAdminUsers
	products *mockProductRepo
	notifier *mockNotifier
	cache    *CacheService
	svc      *AdminService
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		stats:    new(mockAdminStats),
		users:    new(mockAdminUsers),
		products: new(mockProductRepo),
		notifier: new(mockNotifier),
		cache:    NewCacheService(0),
	}
	reports := NewReportService(new(mockReportRepo), f.users, f.products, new(mockChatRepo), f.notifier)
	f.svc = NewAdminService(f.stats, f.users, f.products, reports, f.cache, time.Minute, f.notifier)
	return f
}

func TestAdminService_Dashboard_Cached(t *testing.T) {
	f := newAdminFixture()
	f.stats.On("Dashboard", mock.Anything).Return(&models.DashboardStats{TotalUsers: 7}, nil).Once()

	first, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)
	second, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, first.TotalUsers)
	assert.Same(t, first, second)
	f.stats.AssertNumberOfCalls(t, "Dashboard", 1)
}

func TestAdminService_Dashboard_ErrorNotCached(t *testing.T) {
	f := newAdminFixture()
	f.stats.On("Dashboard", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	f.stats.On("Dashboard", mock.Anything).Return(&models.DashboardStats{TotalUsers: 1}, nil).Once()

	_, err := f.svc.Dashboard(context.Background())
	require.Error(t, err)

	stats, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
}

func TestAdminService_Analytics_Defaults(t *testing.T) {
	f := newAdminFixture()
	f.stats.On("Analytics", mock.Anything, "day", 30).Return([]models.AnalyticsPoint{{NewUsers: 3}}, nil)

	points, err := f.svc.Analytics(context.Background(), validation.AnalyticsQuery{})
	require.NoError(t, err)
	assert.Len(t, points, 1)

	_, err = f.svc.Analytics(context.Background(), validation.AnalyticsQuery{Bucket: "year"})
	assert.True(t, apperror.IsValidation(err))
}

func TestAdminService_SetUserActive_Self(t *testing.T) {
	f := newAdminFixture()
	adminID := uuid.New()

	_, err := f.svc.SetUserActive(context.Background(), adminID, adminID, false)
	assert.Equal(t, errSelfModeration, err)
	f.users.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminService_SetUserActive_DeactivateClosesSessions(t *testing.T) {
	f := newAdminFixture()
	userID := uuid.New()
	f.cache.Set(DashboardCacheKey(), &models.DashboardStats{}, time.Minute)

	f.users.On("SetActive", mock.Anything, userID, false).Return(nil)
	f.users.On("DeleteUserSessions", mock.Anything, userID).Return(nil)
	f.users.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID, IsActive: false}, nil)

	user, err := f.svc.SetUserActive(context.Background(), uuid.New(), userID, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	f.users.AssertExpectations(t)

	_, cached := f.cache.Get(DashboardCacheKey())
	assert.False(t, cached)
}

func TestAdminService_ApproveProduct(t *testing.T) {
	f := newAdminFixture()
	product := &models.Product{ID: uuid.New(), SellerID: uuid.New(), Title: "Платье", Status: models.ProductStatusApproved}
	f.cache.Set(TopSellersCacheKey(10), []models.TopSeller{}, time.Minute)

	f.products.On("UpdateStatus", mock.Anything, product.ID,
		[]string{models.ProductStatusPending, models.ProductStatusRejected}, models.ProductStatusApproved, (*string)(nil)).
		Return(product, nil)
	f.notifier.On("Notify", mock.Anything, product.SellerID, models.NotificationProductApproved, mock.Anything, mock.Anything).Return()

	got, err := f.svc.ApproveProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusApproved, got.Status)
	f.notifier.AssertExpectations(t)

	_, cached := f.cache.Get(TopSellersCacheKey(10))
	assert.False(t, cached)
}

func TestAdminService_ApproveProduct_AlreadyModerated(t *testing.T) {
	f := newAdminFixture()
	f.products.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, common.ErrStatusConflict)

	_, err := f.svc.ApproveProduct(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errStatusChanged)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminService_RejectProduct_RequiresReason(t *testing.T) {
	f := newAdminFixture()

	_, err := f.svc.RejectProduct(context.Background(), uuid.New(), validation.RejectProductRequest{Reason: "  "})
	assert.True(t, apperror.IsValidation(err))
	f.products.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
