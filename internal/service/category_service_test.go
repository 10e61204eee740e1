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
	"github.com/ignatzorin/preloved-backend/internal/repository"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

type mockCategoryRepo struct {
	mock.Mock
}

func (m *mockCategoryRepo) List(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	args := m.Called(ctx, includeInactive)
	items, _ := args.Get(0).([]models.Category)
	return items, args.Error(1)
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *mockCategoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestCategoryService_Create_BuildsSlug(t *testing.T) {
	repo := new(mockCategoryRepo)
	svc := NewCategoryService(repo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Category) bool {
		return c.Slug == "womens-clothing" && c.IsActive
	})).Return(nil)

	category, err := svc.Create(context.Background(), validation.CategoryRequest{Name: " Women's Clothing "})
	require.NoError(t, err)
	assert.Equal(t, "Women's Clothing", category.Name)
}

func TestCategoryService_Create_PunctuationOnly(t *testing.T) {
	svc := NewCategoryService(new(mockCategoryRepo))

	_, err := svc.Create(context.Background(), validation.CategoryRequest{Name: "!!!"})
	assert.True(t, apperror.IsValidation(err))
}

func TestCategoryService_Delete_InUse(t *testing.T) {
	repo := new(mockCategoryRepo)
	svc := NewCategoryService(repo)
	repo.On("Delete", mock.Anything, mock.Anything).Return(repository.ErrCategoryInUse)

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errCategoryInUse)
}
