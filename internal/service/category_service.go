package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// CategoryRepository хранилище категорий.
type CategoryRepository interface {
	List(ctx context.Context, includeInactive bool) ([]models.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var errBadCategoryName = apperror.Validation([]apperror.FieldError{{Field: "name", Message: "название должно содержать буквы или цифры"}})

// CategoryService справочник категорий.
type CategoryService struct {
	repo CategoryRepository
}

func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List возвращает категории; неактивные видны только администратору.
func (s *CategoryService) List(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	categories, err := s.repo.List(ctx, includeInactive)
	return categories, translate(err)
}

func (s *CategoryService) GetBySlug(ctx context.Context, value string) (*models.Category, error) {
	category, err := s.repo.GetBySlug(ctx, value)
	return category, translate(err)
}

// Create добавляет категорию; slug строится из названия.
func (s *CategoryService) Create(ctx context.Context, req validation.CategoryRequest) (*models.Category, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	category := &models.Category{IsActive: true}
	if err := applyCategory(category, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, translate(err)
	}
	return category, nil
}

// Update заменяет поля категории.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req validation.CategoryRequest) (*models.Category, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := applyCategory(category, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, translate(err)
	}
	return category, nil
}

// Delete удаляет категорию без товаров.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(s.repo.Delete(ctx, id))
}

func applyCategory(category *models.Category, req validation.CategoryRequest) error {
	categorySlug := slug.Make(req.Name)
	if categorySlug == "" {
		return errBadCategoryName
	}

	category.Name = req.Name
	category.Slug = categorySlug
	category.Description = req.Description
	category.Icon = req.Icon
	category.SortOrder = req.SortOrder
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	return nil
}
