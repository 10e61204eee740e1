package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/preloved-backend/internal/models"
)

// AdminRepository агрегатные запросы админ-панели.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository создаёт экземпляр репозитория.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Dashboard возвращает сводные счётчики платформы.
func (r *AdminRepository) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users WHERE is_active) AS active_users,
			p.total AS total_products,
			p.pending AS pending_products,
			p.approved AS approved_products,
			p.sold AS sold_products,
			pu.total AS total_purchases,
			pu.pending AS pending_purchases,
			pu.completed AS completed_purchases,
			pu.revenue AS total_revenue,
			(SELECT COUNT(*) FROM reports WHERE status = 'pending') AS pending_reports
		FROM
			(SELECT
				COUNT(*) AS total,
				COUNT(*) FILTER (WHERE status = 'pending') AS pending,
				COUNT(*) FILTER (WHERE status = 'approved') AS approved,
				COUNT(*) FILTER (WHERE status = 'sold') AS sold
			FROM products) p,
			(SELECT
				COUNT(*) AS total,
				COUNT(*) FILTER (WHERE status = 'pending') AS pending,
				COUNT(*) FILTER (WHERE status = 'completed') AS completed,
				COALESCE(SUM(price * quantity) FILTER (WHERE status = 'completed'), 0) AS revenue
			FROM purchases) pu
	`
	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("admin repository: dashboard %w", err)
	}
	return &stats, nil
}

// Analytics возвращает метрики по интервалам bucket за последние days дней.
// bucket должен быть проверен вызывающим кодом по models.ValidBuckets.
func (r *AdminRepository) Analytics(ctx context.Context, bucket string, days int) ([]models.AnalyticsPoint, error) {
	if _, ok := models.ValidBuckets[bucket]; !ok {
		return nil, fmt.Errorf("admin repository: unknown bucket %q", bucket)
	}

	query := `
		WITH series AS (
			SELECT generate_series(
				date_trunc($1, NOW() - make_interval(days => $2)),
				date_trunc($1, NOW()),
				('1 ' || $1)::interval
			) AS bucket
		),
		u AS (
			SELECT date_trunc($1, created_at) AS bucket, COUNT(*) AS cnt
			FROM users WHERE created_at >= NOW() - make_interval(days => $2)
			GROUP BY 1
		),
		l AS (
			SELECT date_trunc($1, created_at) AS bucket, COUNT(*) AS cnt
			FROM products WHERE created_at >= NOW() - make_interval(days => $2)
			GROUP BY 1
		),
		s AS (
			SELECT date_trunc($1, completed_at) AS bucket, COUNT(*) AS cnt, SUM(price * quantity) AS revenue
			FROM purchases
			WHERE status = 'completed' AND completed_at >= NOW() - make_interval(days => $2)
			GROUP BY 1
		)
		SELECT series.bucket,
			COALESCE(u.cnt, 0) AS new_users,
			COALESCE(l.cnt, 0) AS new_listings,
			COALESCE(s.cnt, 0) AS completed_purchases,
			COALESCE(s.revenue, 0) AS revenue
		FROM series
		LEFT JOIN u ON u.bucket = series.bucket
		LEFT JOIN l ON l.bucket = series.bucket
		LEFT JOIN s ON s.bucket = series.bucket
		ORDER BY series.bucket
	`
	points := []models.AnalyticsPoint{}
	if err := r.db.SelectContext(ctx, &points, query, bucket, days); err != nil {
		return nil, fmt.Errorf("admin repository: analytics %w", err)
	}
	return points, nil
}

// TopSellers возвращает продавцов с наибольшим числом завершённых продаж.
func (r *AdminRepository) TopSellers(ctx context.Context, limit int) ([]models.TopSeller, error) {
	query := `
		SELECT u.id AS seller_id, u.full_name, u.avatar_url,
			COUNT(pu.id) AS sales_count,
			COALESCE(SUM(pu.price * pu.quantity), 0) AS revenue
		FROM purchases pu
		JOIN users u ON u.id = pu.seller_id
		WHERE pu.status = 'completed'
		GROUP BY u.id
		ORDER BY sales_count DESC, revenue DESC
		LIMIT $1
	`
	sellers := []models.TopSeller{}
	if err := r.db.SelectContext(ctx, &sellers, query, limit); err != nil {
		return nil, fmt.Errorf("admin repository: top sellers %w", err)
	}
	return sellers, nil
}
