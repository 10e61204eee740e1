package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/repository/common"
)

var ErrReportNotFound = errors.New("report not found")

const reportColumns = `id, reporter_id, reported_user_id, reported_product_id, reported_message_id,
	reason, description, status, admin_note, reviewed_by, reviewed_at, created_at`

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO reports (reporter_id, reported_user_id, reported_product_id, reported_message_id, reason, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, status, created_at
	`, report.ReporterID, report.ReportedUserID, report.ReportedProductID, report.ReportedMessageID,
		report.Reason, report.Description,
	).Scan(&report.ID, &report.Status, &report.CreatedAt); err != nil {
		return fmt.Errorf("report repository: create %w", err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	query := fmt.Sprintf(`SELECT %s FROM reports WHERE id = $1`, reportColumns)
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("report repository: get by id %w", err)
	}
	return &report, nil
}

func (r *ReportRepository) ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, error) {
	reports := []models.Report{}
	query := fmt.Sprintf(`
		SELECT %s FROM reports WHERE reporter_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, reportColumns)
	if err := r.db.SelectContext(ctx, &reports, query, reporterID, limit, offset); err != nil {
		return nil, fmt.Errorf("report repository: list by reporter %w", err)
	}
	return reports, nil
}

// List возвращает жалобы для модерации. Пустой статус означает все жалобы.
func (r *ReportRepository) List(ctx context.Context, status string, limit, offset int) ([]models.ReportView, error) {
	query := `
		SELECT rp.id, rp.reporter_id, rp.reported_user_id, rp.reported_product_id, rp.reported_message_id,
			rp.reason, rp.description, rp.status, rp.admin_note, rp.reviewed_by, rp.reviewed_at, rp.created_at,
			u.full_name AS reporter_name
		FROM reports rp
		JOIN users u ON u.id = rp.reporter_id
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if status != "" {
		query += fmt.Sprintf(" AND rp.status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY rp.created_at ASC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	reports := []models.ReportView{}
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("report repository: list %w", err)
	}
	return reports, nil
}

// Advance переводит жалобу в статус to, если её текущий статус входит в from.
// Гонка с другим модератором даёт common.ErrStatusConflict.
func (r *ReportRepository) Advance(ctx context.Context, id uuid.UUID, from []string, to string, adminID uuid.UUID, note *string) (*models.Report, error) {
	var report models.Report
	query := fmt.Sprintf(`
		UPDATE reports
		SET status = $2, admin_note = COALESCE($3, admin_note), reviewed_by = $4, reviewed_at = NOW()
		WHERE id = $1 AND status = ANY($5)
		RETURNING %s
	`, reportColumns)

	if err := r.db.GetContext(ctx, &report, query, id, to, note, adminID, pq.Array(from)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrStatusConflict
		}
		return nil, fmt.Errorf("report repository: advance %w", err)
	}
	return &report, nil
}
