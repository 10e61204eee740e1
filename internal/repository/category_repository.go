package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/repository/common"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryInUse возвращается при удалении категории, на которую ссылаются товары.
	ErrCategoryInUse = errors.New("category has products")
)

const categorySelect = `
	SELECT c.id, c.name, c.slug, c.description, c.icon, c.sort_order, c.is_active, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.status = 'approved') AS products_count
	FROM categories c
`

// CategoryRepository отвечает за работу с таблицей categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository создаёт экземпляр репозитория.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List возвращает категории в порядке отображения.
func (r *CategoryRepository) List(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	query := categorySelect
	if !includeInactive {
		query += " WHERE c.is_active = TRUE"
	}
	query += " ORDER BY c.sort_order, c.name"

	categories := []models.Category{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("category repository: list %w", err)
	}
	return categories, nil
}

// GetByID возвращает категорию по идентификатору.
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return common.GetByID[models.Category](ctx, r.db, "categories", id, ErrCategoryNotFound)
}

// GetBySlug возвращает категорию по slug вместе с числом объявлений.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.GetContext(ctx, &category, categorySelect+" WHERE c.slug = $1", slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("category repository: get by slug %w", err)
	}
	return &category, nil
}

// Create создаёт категорию.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (name, slug, description, icon, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		category.Name, category.Slug, category.Description, category.Icon, category.SortOrder, category.IsActive,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt); err != nil {
		return fmt.Errorf("category repository: create %w", err)
	}
	return nil
}

// Update сохраняет изменения категории.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, icon = $5, sort_order = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		category.ID, category.Name, category.Slug, category.Description, category.Icon, category.SortOrder, category.IsActive,
	).Scan(&category.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("category repository: update %w", err)
	}
	return nil
}

// Delete удаляет категорию, только если на неё не ссылается ни один товар.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM categories
		WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM products WHERE category_id = $1)
	`, id)
	if err != nil {
		return fmt.Errorf("category repository: delete %w", err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("category repository: delete check %w", err)
	}
	if exists {
		return ErrCategoryInUse
	}
	return ErrCategoryNotFound
}
