package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/preloved-backend/internal/logger"
	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// ProductRepository хранилище объявлений и их изображений.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product, imageURLs []string) ([]models.ProductImage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.ProductFilter) ([]models.ProductListItem, error)
	Update(ctx context.Context, id uuid.UUID, upd models.ProductUpdate) (*models.Product, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string, reason *string) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
	ListImages(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error)
	AddImage(ctx context.Context, productID uuid.UUID, url string, maxImages int) (*models.ProductImage, error)
	SetPrimaryImage(ctx context.Context, productID, imageID uuid.UUID) error
	DeleteImage(ctx context.Context, productID, imageID uuid.UUID) (string, error)
}

// FavoriteRepository хранилище избранного.
type FavoriteRepository interface {
	Toggle(ctx context.Context, userID, productID uuid.UUID) (*models.FavoriteToggle, error)
	IsFavorited(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ProductListItem, error)
}

// UserFinder поиск пользователя по идентификатору.
type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CategoryFinder поиск категории по идентификатору.
type CategoryFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// CartChecker проверка наличия товара в корзине.
type CartChecker interface {
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// ImageStorage файловое хранилище изображений товаров.
type ImageStorage interface {
	Save(ctx context.Context, productID uuid.UUID, originalName string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// Actor пользователь, выполняющий операцию.
type Actor struct {
	ID      uuid.UUID
	IsAdmin bool
}

var (
	errSoldProductLocked = apperror.Conflict("проданный товар нельзя изменить")
	errStatusNotAllowed  = apperror.Conflict("недопустимое изменение статуса товара")
)

// ProductOptions параметры каталога из конфигурации.
type ProductOptions struct {
	PlaceholderImage string
	MaxImages        int
}

// ProductService объявления, изображения и избранное.
type ProductService struct {
	products   ProductRepository
	favorites  FavoriteRepository
	users      UserFinder
	categories CategoryFinder
	cart       CartChecker
	storage    ImageStorage
	opts       ProductOptions
}

func NewProductService(
	products ProductRepository,
	favorites FavoriteRepository,
	users UserFinder,
	categories CategoryFinder,
	cart CartChecker,
	storage ImageStorage,
	opts ProductOptions,
) *ProductService {
	return &ProductService{
		products:   products,
		favorites:  favorites,
		users:      users,
		categories: categories,
		cart:       cart,
		storage:    storage,
		opts:       opts,
	}
}

// Create публикует объявление на модерацию.
func (s *ProductService) Create(ctx context.Context, sellerID uuid.UUID, req validation.CreateProductRequest) (*models.ProductDetails, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, translate(err)
	}
	if !category.IsActive {
		return nil, apperror.ErrCategoryNotFound
	}

	product := &models.Product{
		SellerID:    sellerID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Condition:   req.Condition,
		Brand:       req.Brand,
		Size:        req.Size,
		Location:    req.Location,
		Status:      models.ProductStatusPending,
	}

	imageURLs := req.Images
	if len(imageURLs) == 0 && s.opts.PlaceholderImage != "" {
		imageURLs = []string{s.opts.PlaceholderImage}
	}

	images, err := s.products.Create(ctx, product, imageURLs)
	if err != nil {
		return nil, translate(err)
	}
	return &models.ProductDetails{Product: *product, Images: images, Category: category}, nil
}

// Get возвращает карточку товара и увеличивает счётчик просмотров.
// Неодобренный товар виден только владельцу и администратору.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID, viewer *Actor) (*models.ProductDetails, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if product.Status != models.ProductStatusApproved && product.Status != models.ProductStatusSold && !canManage(viewer, product) {
		return nil, apperror.ErrProductNotFound
	}

	if err := s.products.IncrementViews(ctx, id); err != nil {
		return nil, translate(err)
	}
	product.ViewCount++

	details := &models.ProductDetails{Product: *product}
	if details.Images, err = s.products.ListImages(ctx, id); err != nil {
		return nil, translate(err)
	}

	seller, err := s.users.GetByID(ctx, product.SellerID)
	if err != nil {
		return nil, translate(err)
	}
	details.Seller = &models.UserSummary{
		ID:         seller.ID,
		FullName:   seller.FullName,
		AvatarURL:  seller.AvatarURL,
		IsVerified: seller.IsVerified,
	}

	if details.Category, err = s.categories.GetByID(ctx, product.CategoryID); err != nil {
		return nil, translate(err)
	}

	if viewer != nil {
		if details.IsFavorited, err = s.favorites.IsFavorited(ctx, viewer.ID, id); err != nil {
			return nil, translate(err)
		}
		if details.IsInCart, err = s.cart.Exists(ctx, viewer.ID, id); err != nil {
			return nil, translate(err)
		}
	}
	return details, nil
}

// List публичный каталог: только одобренные товары.
func (s *ProductService) List(ctx context.Context, q validation.ProductQuery, limit, offset int) ([]models.ProductListItem, error) {
	if err := validation.Validate(&q); err != nil {
		return nil, err
	}

	filter := models.ProductFilter{
		CategorySlug: q.Category,
		Condition:    q.Condition,
		Brand:        q.Brand,
		Search:       q.Search,
		Location:     q.Location,
		Sort:         q.Sort,
		Statuses:     []string{models.ProductStatusApproved},
		Limit:        limit,
		Offset:       offset,
	}
	if q.CategoryID != "" {
		id := uuid.MustParse(q.CategoryID)
		filter.CategoryID = &id
	}
	if q.MinPrice != "" {
		v := decimal.RequireFromString(q.MinPrice)
		filter.MinPrice = &v
	}
	if q.MaxPrice != "" {
		v := decimal.RequireFromString(q.MaxPrice)
		filter.MaxPrice = &v
	}

	items, err := s.products.List(ctx, filter)
	return items, translate(err)
}

// ListMine объявления продавца во всех статусах.
func (s *ProductService) ListMine(ctx context.Context, sellerID uuid.UUID, status string, limit, offset int) ([]models.ProductListItem, error) {
	filter := models.ProductFilter{SellerID: &sellerID, Sort: models.SortNewest, Limit: limit, Offset: offset}
	if status != "" {
		if _, ok := models.ValidProductStatuses[status]; !ok {
			return nil, apperror.Validation([]apperror.FieldError{{Field: "status", Message: "недопустимый статус"}})
		}
		filter.Statuses = []string{status}
	}
	items, err := s.products.List(ctx, filter)
	return items, translate(err)
}

// Update меняет объявление владельцем или администратором.
// Правка отклонённого объявления возвращает его на модерацию.
func (s *ProductService) Update(ctx context.Context, actor Actor, id uuid.UUID, req validation.UpdateProductRequest) (*models.Product, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	product, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if product.Status == models.ProductStatusSold {
		return nil, errSoldProductLocked
	}

	if req.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, translate(err)
		}
		if !category.IsActive {
			return nil, apperror.ErrCategoryNotFound
		}
	}

	upd := models.ProductUpdate{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Condition:   req.Condition,
		Brand:       req.Brand,
		Size:        req.Size,
		Location:    req.Location,
	}

	switch {
	case req.Status != nil:
		if !ownerMayMove(product.Status, *req.Status) {
			return nil, errStatusNotAllowed
		}
		upd.Status = req.Status
	case product.Status == models.ProductStatusRejected:
		pending := models.ProductStatusPending
		upd.Status = &pending
	}

	updated, err := s.products.Update(ctx, id, upd)
	return updated, translate(err)
}

// ownerMayMove владелец снимает товар с продажи или отправляет его на модерацию повторно.
func ownerMayMove(from, to string) bool {
	switch to {
	case models.ProductStatusInactive:
		return from == models.ProductStatusApproved || from == models.ProductStatusPending || from == models.ProductStatusInactive
	case models.ProductStatusPending:
		return from == models.ProductStatusInactive || from == models.ProductStatusRejected || from == models.ProductStatusPending
	}
	return false
}

// Delete удаляет объявление, затем без гарантий удаляет файлы изображений.
func (s *ProductService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.loadManaged(ctx, actor, id); err != nil {
		return err
	}

	urls, err := s.products.Delete(ctx, id)
	if err != nil {
		return translate(err)
	}
	for _, url := range urls {
		s.removeFile(ctx, url)
	}
	return nil
}

// UploadImage сохраняет файл и регистрирует его у товара.
// Если запись в базу не удалась, файл удаляется.
func (s *ProductService) UploadImage(ctx context.Context, actor Actor, productID uuid.UUID, filename string, r io.Reader) (*models.ProductImage, error) {
	if _, err := s.loadManaged(ctx, actor, productID); err != nil {
		return nil, err
	}

	existing, err := s.products.ListImages(ctx, productID)
	if err != nil {
		return nil, translate(err)
	}

	url, err := s.storage.Save(ctx, productID, filename, r)
	if err != nil {
		return nil, err
	}

	image, err := s.products.AddImage(ctx, productID, url, s.opts.MaxImages+s.placeholderCount(existing))
	if err != nil {
		s.removeFile(ctx, url)
		return nil, translate(err)
	}

	// Первое настоящее фото вытесняет заглушку.
	for _, img := range existing {
		if img.ImageURL != s.opts.PlaceholderImage {
			continue
		}
		if _, err := s.products.DeleteImage(ctx, productID, img.ID); err != nil {
			logger.Log.WithFields(logrus.Fields{"product_id": productID, "error": err}).
				Warn("product service: не удалось удалить заглушку")
			continue
		}
		image.IsPrimary = image.IsPrimary || img.IsPrimary
	}
	return image, nil
}

// SetPrimaryImage назначает основное изображение.
func (s *ProductService) SetPrimaryImage(ctx context.Context, actor Actor, productID, imageID uuid.UUID) ([]models.ProductImage, error) {
	if _, err := s.loadManaged(ctx, actor, productID); err != nil {
		return nil, err
	}
	if err := s.products.SetPrimaryImage(ctx, productID, imageID); err != nil {
		return nil, translate(err)
	}
	images, err := s.products.ListImages(ctx, productID)
	return images, translate(err)
}

// DeleteImage удаляет изображение товара.
func (s *ProductService) DeleteImage(ctx context.Context, actor Actor, productID, imageID uuid.UUID) error {
	if _, err := s.loadManaged(ctx, actor, productID); err != nil {
		return err
	}
	url, err := s.products.DeleteImage(ctx, productID, imageID)
	if err != nil {
		return translate(err)
	}
	s.removeFile(ctx, url)
	return nil
}

// ToggleFavorite добавляет товар в избранное или убирает его оттуда.
func (s *ProductService) ToggleFavorite(ctx context.Context, userID, productID uuid.UUID) (*models.FavoriteToggle, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, translate(err)
	}
	if product.SellerID == userID {
		return nil, apperror.ErrOwnProduct
	}
	result, err := s.favorites.Toggle(ctx, userID, productID)
	return result, translate(err)
}

func (s *ProductService) ListFavorites(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ProductListItem, error) {
	items, err := s.favorites.ListByUser(ctx, userID, limit, offset)
	return items, translate(err)
}

func (s *ProductService) loadManaged(ctx context.Context, actor Actor, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !canManage(&actor, product) {
		return nil, apperror.ErrForbidden
	}
	return product, nil
}

func (s *ProductService) placeholderCount(images []models.ProductImage) int {
	n := 0
	for _, img := range images {
		if img.ImageURL == s.opts.PlaceholderImage {
			n++
		}
	}
	return n
}

func (s *ProductService) removeFile(ctx context.Context, url string) {
	if url == "" || url == s.opts.PlaceholderImage {
		return
	}
	if err := s.storage.Remove(ctx, url); err != nil {
		logger.Log.WithFields(logrus.Fields{"url": url, "error": err}).
			Warn("product service: не удалось удалить файл изображения")
	}
}

func canManage(actor *Actor, product *models.Product) bool {
	return actor != nil && (actor.IsAdmin || actor.ID == product.SellerID)
}
