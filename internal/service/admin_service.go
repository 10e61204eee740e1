package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/preloved-backend/internal/metrics"
	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// AdminStatsRepository агрегаты для админ-панели.
type AdminStatsRepository interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
	Analytics(ctx context.Context, bucket string, days int) ([]models.AnalyticsPoint, error)
	TopSellers(ctx context.Context, limit int) ([]models.TopSeller, error)
}

// AdminUserRepository управление аккаунтами.
type AdminUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) error
}

// ProductModerationRepository модерация объявлений.
type ProductModerationRepository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.ProductListItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string, reason *string) (*models.Product, error)
}

var errSelfModeration = apperror.Conflict("нельзя изменить собственный аккаунт")

// AdminService административные операции и статистика.
type AdminService struct {
	stats    AdminStatsRepository
	users    AdminUserRepository
	products ProductModerationRepository
	reports  *ReportService
	cache    *CacheService
	cacheTTL time.Duration
	notifier Notifier
}

func NewAdminService(
	stats AdminStatsRepository,
	users AdminUserRepository,
	products ProductModerationRepository,
	reports *ReportService,
	cache *CacheService,
	cacheTTL time.Duration,
	notifier Notifier,
) *AdminService {
	return &AdminService{
		stats:    stats,
		users:    users,
		products: products,
		reports:  reports,
		cache:    cache,
		cacheTTL: cacheTTL,
		notifier: notifier,
	}
}

// Dashboard сводные счётчики, кэшируются на cacheTTL.
func (s *AdminService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	value, err := s.cache.GetOrSet(DashboardCacheKey(), s.cacheTTL, func() (interface{}, error) {
		stats, err := s.stats.Dashboard(ctx)
		return stats, translate(err)
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.DashboardStats), nil
}

// Analytics метрики по интервалам.
func (s *AdminService) Analytics(ctx context.Context, q validation.AnalyticsQuery) ([]models.AnalyticsPoint, error) {
	if err := validation.Validate(&q); err != nil {
		return nil, err
	}
	value, err := s.cache.GetOrSet(AnalyticsCacheKey(q.Bucket, q.Days), s.cacheTTL, func() (interface{}, error) {
		points, err := s.stats.Analytics(ctx, q.Bucket, q.Days)
		return points, translate(err)
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.AnalyticsPoint), nil
}

func (s *AdminService) TopSellers(ctx context.Context, limit int) ([]models.TopSeller, error) {
	value, err := s.cache.GetOrSet(TopSellersCacheKey(limit), s.cacheTTL, func() (interface{}, error) {
		sellers, err := s.stats.TopSellers(ctx, limit)
		return sellers, translate(err)
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.TopSeller), nil
}

func (s *AdminService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	users, err := s.users.List(ctx, filter)
	return users, translate(err)
}

// SetUserActive блокирует или разблокирует аккаунт; блокировка закрывает сессии.
func (s *AdminService) SetUserActive(ctx context.Context, adminID, userID uuid.UUID, active bool) (*models.User, error) {
	if adminID == userID {
		return nil, errSelfModeration
	}
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return nil, translate(err)
	}
	if !active {
		if err := s.users.DeleteUserSessions(ctx, userID); err != nil {
			return nil, translate(err)
		}
	}
	s.cache.InvalidateAdminStats()
	return s.reload(ctx, userID)
}

// SetUserVerified ставит или снимает отметку проверенного продавца.
func (s *AdminService) SetUserVerified(ctx context.Context, adminID, userID uuid.UUID, verified bool) (*models.User, error) {
	if adminID == userID {
		return nil, errSelfModeration
	}
	if err := s.users.SetVerified(ctx, userID, verified); err != nil {
		return nil, translate(err)
	}
	return s.reload(ctx, userID)
}

// PendingProducts очередь модерации, старые сначала.
func (s *AdminService) PendingProducts(ctx context.Context, limit, offset int) ([]models.ProductListItem, error) {
	items, err := s.products.List(ctx, models.ProductFilter{
		Statuses: []string{models.ProductStatusPending},
		Sort:     models.SortOldest,
		Limit:    limit,
		Offset:   offset,
	})
	return items, translate(err)
}

// ApproveProduct публикует объявление.
func (s *AdminService) ApproveProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.UpdateStatus(ctx, productID,
		[]string{models.ProductStatusPending, models.ProductStatusRejected}, models.ProductStatusApproved, nil)
	if err != nil {
		return nil, translate(err)
	}
	metrics.ProductModerations.WithLabelValues("approved").Inc()
	s.cache.InvalidateAdminStats()

	s.notifier.Notify(ctx, product.SellerID, models.NotificationProductApproved, "Объявление опубликовано", map[string]interface{}{
		"product_id": product.ID,
		"title":      product.Title,
	})
	return product, nil
}

// RejectProduct отклоняет объявление с причиной, которую увидит продавец.
func (s *AdminService) RejectProduct(ctx context.Context, productID uuid.UUID, req validation.RejectProductRequest) (*models.Product, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	product, err := s.products.UpdateStatus(ctx, productID,
		[]string{models.ProductStatusPending, models.ProductStatusApproved}, models.ProductStatusRejected, &req.Reason)
	if err != nil {
		return nil, translate(err)
	}
	metrics.ProductModerations.WithLabelValues("rejected").Inc()
	s.cache.InvalidateAdminStats()

	s.notifier.Notify(ctx, product.SellerID, models.NotificationProductRejected, "Объявление отклонено", map[string]interface{}{
		"product_id": product.ID,
		"title":      product.Title,
		"reason":     req.Reason,
	})
	return product, nil
}

func (s *AdminService) ListReports(ctx context.Context, status string, limit, offset int) ([]models.ReportView, error) {
	return s.reports.List(ctx, status, limit, offset)
}

// UpdateReport продвигает жалобу и сбрасывает сводку.
func (s *AdminService) UpdateReport(ctx context.Context, adminID, reportID uuid.UUID, req validation.UpdateReportStatusRequest) (*models.Report, error) {
	report, err := s.reports.Advance(ctx, adminID, reportID, req)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateAdminStats()
	return report, nil
}

func (s *AdminService) reload(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	return user, translate(err)
}
