package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/repository/common"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrImageNotFound   = errors.New("product image not found")
	// ErrTooManyImages возвращается при превышении лимита изображений товара.
	ErrTooManyImages = errors.New("too many product images")
)

const productColumns = `id, seller_id, category_id, title, description, price, condition, brand, size, location,
	status, rejection_reason, view_count, favorite_count, created_at, updated_at`

const productListSelect = `
	SELECT p.id, p.seller_id, u.full_name AS seller_name, p.category_id, c.name AS category_name,
		p.title, p.price, p.condition, p.brand, p.location, p.status,
		(SELECT pi.image_url FROM product_images pi
			WHERE pi.product_id = p.id
			ORDER BY pi.is_primary DESC, pi.sort_order, pi.created_at
			LIMIT 1) AS primary_image,
		p.view_count, p.favorite_count, p.created_at
	FROM products p
	JOIN users u ON u.id = p.seller_id
	JOIN categories c ON c.id = p.category_id
`

var productSortClauses = map[string]string{
	models.SortNewest:    "p.created_at DESC",
	models.SortOldest:    "p.created_at ASC",
	models.SortPriceAsc:  "p.price ASC, p.created_at DESC",
	models.SortPriceDesc: "p.price DESC, p.created_at DESC",
	models.SortPopular:   "p.favorite_count DESC, p.view_count DESC, p.created_at DESC",
}

// ProductRepository отвечает за работу с таблицами products и product_images.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository создаёт экземпляр репозитория.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create сохраняет товар, его изображения и увеличивает listings_count продавца в одной транзакции.
// Первое изображение становится основным.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product, imageURLs []string) ([]models.ProductImage, error) {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO products (seller_id, category_id, title, description, price, condition, brand, size, location, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, view_count, favorite_count, created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query,
			product.SellerID, product.CategoryID, product.Title, product.Description, product.Price,
			product.Condition, product.Brand, product.Size, product.Location, product.Status,
		).Scan(&product.ID, &product.ViewCount, &product.FavoriteCount, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return fmt.Errorf("product repository: create %w", err)
		}

		inserter := common.NewBatchInserter(tx, "INSERT INTO product_images (product_id, image_url, sort_order, is_primary)", 4, 50)
		for i, url := range imageURLs {
			if err := inserter.Add(ctx, product.ID, url, i, i == 0); err != nil {
				return fmt.Errorf("product repository: create images %w", err)
			}
		}
		if err := inserter.Flush(ctx); err != nil {
			return fmt.Errorf("product repository: create images %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET listings_count = listings_count + 1 WHERE id = $1`, product.SellerID,
		); err != nil {
			return fmt.Errorf("product repository: listings counter %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.ListImages(ctx, product.ID)
}

// GetByID возвращает товар по идентификатору.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return getProduct(ctx, r.db, id, false)
}

// getProduct читает товар через db или tx; forUpdate блокирует строку до конца транзакции.
func getProduct(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID, forUpdate bool) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	if forUpdate {
		query += " FOR UPDATE"
	}

	var product models.Product
	if err := sqlx.GetContext(ctx, q, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("product repository: get by id %w", err)
	}
	return &product, nil
}

// IncrementViews увеличивает счётчик просмотров.
func (r *ProductRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE products SET view_count = view_count + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("product repository: increment views %w", err)
	}
	return nil
}

// List возвращает страницу каталога по фильтру.
func (r *ProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.ProductListItem, error) {
	var where []string
	args := []interface{}{}
	argIndex := 1

	add := func(clause string, value interface{}) {
		where = append(where, fmt.Sprintf(clause, argIndex))
		args = append(args, value)
		argIndex++
	}

	if len(filter.Statuses) > 0 {
		add("p.status = ANY($%d)", pq.Array(filter.Statuses))
	}
	if filter.CategoryID != nil {
		add("p.category_id = $%d", *filter.CategoryID)
	}
	if filter.CategorySlug != "" {
		add("c.slug = $%d", filter.CategorySlug)
	}
	if filter.SellerID != nil {
		add("p.seller_id = $%d", *filter.SellerID)
	}
	if filter.MinPrice != nil {
		add("p.price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("p.price <= $%d", *filter.MaxPrice)
	}
	if filter.Condition != "" {
		add("p.condition = $%d", filter.Condition)
	}
	if filter.Brand != "" {
		add("p.brand ILIKE $%d", "%"+filter.Brand+"%")
	}
	if filter.Location != "" {
		add("p.location ILIKE $%d", "%"+filter.Location+"%")
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf(
			"(p.title ILIKE $%d OR p.description ILIKE $%d OR p.brand ILIKE $%d)", argIndex, argIndex, argIndex,
		))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	query := productListSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	order, ok := productSortClauses[filter.Sort]
	if !ok {
		order = productSortClauses[models.SortNewest]
	}
	query += " ORDER BY " + order
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	items := []models.ProductListItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("product repository: list %w", err)
	}
	return items, nil
}

// Update применяет изменения; nil поля не трогаются.
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, upd models.ProductUpdate) (*models.Product, error) {
	query := fmt.Sprintf(`
		UPDATE products
		SET category_id = COALESCE($2, category_id),
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			price = COALESCE($5, price),
			condition = COALESCE($6, condition),
			brand = COALESCE($7, brand),
			size = COALESCE($8, size),
			location = COALESCE($9, location),
			status = COALESCE($10, status),
			rejection_reason = CASE WHEN $10::text = 'pending' THEN NULL ELSE rejection_reason END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, productColumns)

	var product models.Product
	if err := r.db.GetContext(ctx, &product, query,
		id, upd.CategoryID, upd.Title, upd.Description, upd.Price, upd.Condition,
		upd.Brand, upd.Size, upd.Location, upd.Status,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("product repository: update %w", err)
	}
	return &product, nil
}

// UpdateStatus переводит товар в новый статус, только если текущий входит в from.
// Возвращает common.ErrStatusConflict, если статус уже изменился.
func (r *ProductRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string, reason *string) (*models.Product, error) {
	query := fmt.Sprintf(`
		UPDATE products
		SET status = $2, rejection_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
		RETURNING %s
	`, productColumns)

	var product models.Product
	if err := r.db.GetContext(ctx, &product, query, id, to, reason, pq.Array(from)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, common.ErrStatusConflict
		}
		return nil, fmt.Errorf("product repository: update status %w", err)
	}
	return &product, nil
}

// Delete удаляет товар (изображения, корзины и избранное удаляются каскадом)
// и уменьшает listings_count продавца. Возвращает пути файлов изображений.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	var urls []string
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &urls, `SELECT image_url FROM product_images WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("product repository: delete images lookup %w", err)
		}

		var sellerID uuid.UUID
		if err := tx.QueryRowxContext(ctx, `DELETE FROM products WHERE id = $1 RETURNING seller_id`, id).Scan(&sellerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductNotFound
			}
			return fmt.Errorf("product repository: delete %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET listings_count = GREATEST(listings_count - 1, 0) WHERE id = $1`, sellerID,
		); err != nil {
			return fmt.Errorf("product repository: listings counter %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}

// ListImages возвращает изображения товара в порядке отображения.
func (r *ProductRepository) ListImages(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	images := []models.ProductImage{}
	query := `
		SELECT id, product_id, image_url, sort_order, is_primary, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY sort_order, created_at
	`
	if err := r.db.SelectContext(ctx, &images, query, productID); err != nil {
		return nil, fmt.Errorf("product repository: list images %w", err)
	}
	return images, nil
}

// AddImage добавляет изображение в конец списка; первое изображение товара становится основным.
func (r *ProductRepository) AddImage(ctx context.Context, productID uuid.UUID, url string, maxImages int) (*models.ProductImage, error) {
	image := models.ProductImage{ProductID: productID, ImageURL: url}
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		// Блокируем товар, чтобы параллельные загрузки не превысили лимит.
		if _, err := getProduct(ctx, tx, productID, true); err != nil {
			return err
		}

		var stats struct {
			Count      int  `db:"count"`
			NextOrder  int  `db:"next_order"`
			HasPrimary bool `db:"has_primary"`
		}
		if err := tx.GetContext(ctx, &stats, `
			SELECT COUNT(*) AS count,
				COALESCE(MAX(sort_order) + 1, 0) AS next_order,
				COALESCE(BOOL_OR(is_primary), FALSE) AS has_primary
			FROM product_images WHERE product_id = $1
		`, productID); err != nil {
			return fmt.Errorf("product repository: image stats %w", err)
		}
		if maxImages > 0 && stats.Count >= maxImages {
			return ErrTooManyImages
		}

		image.SortOrder = stats.NextOrder
		image.IsPrimary = !stats.HasPrimary
		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO product_images (product_id, image_url, sort_order, is_primary)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`, productID, url, image.SortOrder, image.IsPrimary).Scan(&image.ID, &image.CreatedAt); err != nil {
			return fmt.Errorf("product repository: add image %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// SetPrimaryImage снимает признак основного со всех изображений товара и ставит его одному.
func (r *ProductRepository) SetPrimaryImage(ctx context.Context, productID, imageID uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE product_images SET is_primary = FALSE WHERE product_id = $1 AND is_primary = TRUE`, productID,
		); err != nil {
			return fmt.Errorf("product repository: unset primary %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE product_images SET is_primary = TRUE WHERE id = $1 AND product_id = $2`, imageID, productID,
		)
		if err != nil {
			return fmt.Errorf("product repository: set primary %w", err)
		}
		return common.ExpectAffected(result, ErrImageNotFound)
	})
}

// DeleteImage удаляет изображение и, если оно было основным, назначает основным следующее.
// Возвращает путь удалённого файла.
func (r *ProductRepository) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) (string, error) {
	var url string
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var wasPrimary bool
		if err := tx.QueryRowxContext(ctx, `
			DELETE FROM product_images WHERE id = $1 AND product_id = $2
			RETURNING image_url, is_primary
		`, imageID, productID).Scan(&url, &wasPrimary); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrImageNotFound
			}
			return fmt.Errorf("product repository: delete image %w", err)
		}

		if !wasPrimary {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE product_images SET is_primary = TRUE
			WHERE id = (
				SELECT id FROM product_images WHERE product_id = $1
				ORDER BY sort_order, created_at LIMIT 1
			)
		`, productID); err != nil {
			return fmt.Errorf("product repository: promote primary %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return url, nil
}
