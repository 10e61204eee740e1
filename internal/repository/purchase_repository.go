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
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrProductUnavailable возвращается, когда товар перестал быть доступным к покупке.
	ErrProductUnavailable = errors.New("product is not available for purchase")
)

const purchaseColumns = `id, buyer_id, seller_id, product_id, product_title, price, quantity, status,
	shipping_address, note, created_at, updated_at, completed_at`

const purchaseViewSelect = `
	SELECT pu.id, pu.buyer_id, pu.seller_id, pu.product_id, pu.product_title, pu.price, pu.quantity, pu.status,
		pu.shipping_address, pu.note, pu.created_at, pu.updated_at, pu.completed_at,
		b.full_name AS buyer_name, s.full_name AS seller_name,
		(SELECT pi.image_url FROM product_images pi
			WHERE pi.product_id = pu.product_id
			ORDER BY pi.is_primary DESC, pi.sort_order
			LIMIT 1) AS primary_image
	FROM purchases pu
	JOIN users b ON b.id = pu.buyer_id
	JOIN users s ON s.id = pu.seller_id
`

// PurchaseRepository отвечает за работу с таблицей purchases.
type PurchaseRepository struct {
	db *sqlx.DB
}

// NewPurchaseRepository создаёт экземпляр репозитория.
func NewPurchaseRepository(db *sqlx.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Create оформляет покупку с ценой, зафиксированной из товара в момент вставки,
// и убирает товар из корзины покупателя в той же транзакции.
// Вставка выполняется только для одобренного чужого товара, иначе ErrProductUnavailable.
func (r *PurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	if purchase.ProductID == nil {
		return ErrProductNotFound
	}
	productID := *purchase.ProductID

	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf(`
			INSERT INTO purchases (buyer_id, seller_id, product_id, product_title, price, quantity, shipping_address, note)
			SELECT $1, p.seller_id, p.id, p.title, p.price, $3, $4, $5
			FROM products p
			WHERE p.id = $2 AND p.status = '%s' AND p.seller_id <> $1
			RETURNING %s
		`, models.ProductStatusApproved, purchaseColumns)

		if err := tx.GetContext(ctx, purchase, query,
			purchase.BuyerID, productID, purchase.Quantity, purchase.ShippingAddress, purchase.Note,
		); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductUnavailable
			}
			return fmt.Errorf("purchase repository: create %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, purchase.BuyerID, productID,
		); err != nil {
			return fmt.Errorf("purchase repository: clear cart item %w", err)
		}
		return nil
	})
}

// GetByID возвращает покупку по идентификатору.
func (r *PurchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	query := fmt.Sprintf(`SELECT %s FROM purchases WHERE id = $1`, purchaseColumns)
	if err := r.db.GetContext(ctx, &purchase, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("purchase repository: get by id %w", err)
	}
	return &purchase, nil
}

// GetView возвращает покупку с именами сторон.
func (r *PurchaseRepository) GetView(ctx context.Context, id uuid.UUID) (*models.PurchaseView, error) {
	var view models.PurchaseView
	if err := r.db.GetContext(ctx, &view, purchaseViewSelect+" WHERE pu.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("purchase repository: get view %w", err)
	}
	return &view, nil
}

// List возвращает покупки по фильтру, новые сначала.
func (r *PurchaseRepository) List(ctx context.Context, filter models.PurchaseFilter) ([]models.PurchaseView, error) {
	query := purchaseViewSelect + " WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.BuyerID != nil {
		query += fmt.Sprintf(" AND pu.buyer_id = $%d", argIndex)
		args = append(args, *filter.BuyerID)
		argIndex++
	}
	if filter.SellerID != nil {
		query += fmt.Sprintf(" AND pu.seller_id = $%d", argIndex)
		args = append(args, *filter.SellerID)
		argIndex++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND pu.status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY pu.created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	purchases := []models.PurchaseView{}
	if err := r.db.SelectContext(ctx, &purchases, query, args...); err != nil {
		return nil, fmt.Errorf("purchase repository: list %w", err)
	}
	return purchases, nil
}

// Transition атомарно меняет статус from -> to.
// Если статус покупки уже не равен from, возвращает common.ErrStatusConflict.
func (r *PurchaseRepository) Transition(ctx context.Context, id uuid.UUID, from, to models.PurchaseStatus) (*models.Purchase, error) {
	var purchase models.Purchase
	query := fmt.Sprintf(`
		UPDATE purchases SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, purchaseColumns)

	if err := r.db.GetContext(ctx, &purchase, query, id, from, to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrStatusConflict
		}
		return nil, fmt.Errorf("purchase repository: transition %w", err)
	}
	return &purchase, nil
}

// Complete завершает подтверждённую покупку: одна транзакция переводит покупку в completed,
// товар в sold и увеличивает sales_count продавца ровно на единицу.
func (r *PurchaseRepository) Complete(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf(`
			UPDATE purchases
			SET status = $2, completed_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = $3
			RETURNING %s
		`, purchaseColumns)

		if err := tx.GetContext(ctx, &purchase, query, id, models.PurchaseStatusCompleted, models.PurchaseStatusConfirmed); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrStatusConflict
			}
			return fmt.Errorf("purchase repository: complete %w", err)
		}

		if purchase.ProductID != nil {
			// Товар продаётся один раз: вторая завершённая покупка откатывается.
			result, err := tx.ExecContext(ctx,
				`UPDATE products SET status = $2, updated_at = NOW() WHERE id = $1 AND status <> $2`,
				*purchase.ProductID, models.ProductStatusSold,
			)
			if err != nil {
				return fmt.Errorf("purchase repository: mark product sold %w", err)
			}
			if err := common.ExpectAffected(result, ErrProductUnavailable); err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx,
				`DELETE FROM cart_items WHERE product_id = $1`, *purchase.ProductID,
			); err != nil {
				return fmt.Errorf("purchase repository: clear carts %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET sales_count = sales_count + 1 WHERE id = $1`, purchase.SellerID,
		); err != nil {
			return fmt.Errorf("purchase repository: sales counter %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// FindCompleted возвращает последнюю завершённую покупку товара покупателем.
func (r *PurchaseRepository) FindCompleted(ctx context.Context, buyerID, productID uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	query := fmt.Sprintf(`
		SELECT %s FROM purchases
		WHERE buyer_id = $1 AND product_id = $2 AND status = $3
		ORDER BY completed_at DESC
		LIMIT 1
	`, purchaseColumns)

	if err := r.db.GetContext(ctx, &purchase, query, buyerID, productID, models.PurchaseStatusCompleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("purchase repository: find completed %w", err)
	}
	return &purchase, nil
}
