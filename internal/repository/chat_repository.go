package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/repository/common"
)

var (
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrMessageNotFound = errors.New("message not found")
)

const roomColumns = `id, buyer_id, seller_id, product_id, last_message_at, created_at`

// ChatRepository отвечает за работу с таблицами chat_rooms и messages.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository создаёт экземпляр репозитория.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetOrCreateRoom возвращает чат для тройки (покупатель, продавец, товар), создавая его при первом обращении.
func (r *ChatRepository) GetOrCreateRoom(ctx context.Context, buyerID, sellerID, productID uuid.UUID) (*models.ChatRoom, bool, error) {
	var room models.ChatRoom
	insert := fmt.Sprintf(`
		INSERT INTO chat_rooms (buyer_id, seller_id, product_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (buyer_id, seller_id, product_id) DO NOTHING
		RETURNING %s
	`, roomColumns)

	err := r.db.GetContext(ctx, &room, insert, buyerID, sellerID, productID)
	if err == nil {
		return &room, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("chat repository: create room %w", err)
	}

	// Чат уже существует
	query := fmt.Sprintf(`SELECT %s FROM chat_rooms WHERE buyer_id = $1 AND seller_id = $2 AND product_id = $3`, roomColumns)
	if err := r.db.GetContext(ctx, &room, query, buyerID, sellerID, productID); err != nil {
		return nil, false, fmt.Errorf("chat repository: get room %w", err)
	}
	return &room, false, nil
}

// GetRoom возвращает чат по идентификатору.
func (r *ChatRepository) GetRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	return common.GetByID[models.ChatRoom](ctx, r.db, "chat_rooms", id, ErrRoomNotFound)
}

// ListRooms возвращает чаты пользователя, последние активные сначала.
func (r *ChatRepository) ListRooms(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ChatRoomSummary, error) {
	query := `
		SELECT cr.id, cr.buyer_id, cr.seller_id, cr.product_id, cr.last_message_at,
			p.title AS product_title,
			(SELECT pi.image_url FROM product_images pi
				WHERE pi.product_id = p.id
				ORDER BY pi.is_primary DESC, pi.sort_order
				LIMIT 1) AS product_image,
			u.id AS counterpart_id, u.full_name AS counterpart_name, u.avatar_url AS counterpart_avatar,
			lm.content AS last_message, lm.sender_id AS last_message_sender,
			(SELECT COUNT(*) FROM messages m
				WHERE m.room_id = cr.id AND m.sender_id <> $1 AND m.is_read = FALSE) AS unread_count
		FROM chat_rooms cr
		JOIN products p ON p.id = cr.product_id
		JOIN users u ON u.id = CASE WHEN cr.buyer_id = $1 THEN cr.seller_id ELSE cr.buyer_id END
		LEFT JOIN LATERAL (
			SELECT content, sender_id FROM messages
			WHERE room_id = cr.id
			ORDER BY created_at DESC
			LIMIT 1
		) lm ON TRUE
		WHERE cr.buyer_id = $1 OR cr.seller_id = $1
		ORDER BY cr.last_message_at DESC
		LIMIT $2 OFFSET $3
	`
	rooms := []models.ChatRoomSummary{}
	if err := r.db.SelectContext(ctx, &rooms, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("chat repository: list rooms %w", err)
	}
	return rooms, nil
}

// ListMessages возвращает страницу сообщений, новые сначала.
func (r *ChatRepository) ListMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]models.Message, error) {
	query := `
		SELECT id, room_id, sender_id, content, is_read, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	messages := []models.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, roomID, limit, offset); err != nil {
		return nil, fmt.Errorf("chat repository: list messages %w", err)
	}
	return messages, nil
}

// CreateMessage сохраняет сообщение и сдвигает last_message_at чата в одной транзакции.
func (r *ChatRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO messages (room_id, sender_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, is_read, created_at
		`, message.RoomID, message.SenderID, message.Content).Scan(&message.ID, &message.IsRead, &message.CreatedAt); err != nil {
			return fmt.Errorf("chat repository: create message %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE chat_rooms SET last_message_at = $2 WHERE id = $1`, message.RoomID, message.CreatedAt,
		); err != nil {
			return fmt.Errorf("chat repository: touch room %w", err)
		}
		return nil
	})
}

// MarkRead отмечает прочитанными сообщения чата, написанные не читателем.
func (r *ChatRepository) MarkRead(ctx context.Context, roomID, readerID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE room_id = $1 AND sender_id <> $2 AND is_read = FALSE
	`, roomID, readerID)
	if err != nil {
		return 0, fmt.Errorf("chat repository: mark read %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// UnreadCount возвращает общее число непрочитанных сообщений пользователя.
func (r *ChatRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM messages m
		JOIN chat_rooms cr ON cr.id = m.room_id
		WHERE (cr.buyer_id = $1 OR cr.seller_id = $1)
			AND m.sender_id <> $1
			AND m.is_read = FALSE
	`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("chat repository: unread count %w", err)
	}
	return count, nil
}

// GetMessage возвращает сообщение по идентификатору.
func (r *ChatRepository) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	return common.GetByID[models.Message](ctx, r.db, "messages", id, ErrMessageNotFound)
}

// IsParticipant проверяет, участвует ли пользователь в чате.
func (r *ChatRepository) IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var ok bool
	query := `SELECT EXISTS(SELECT 1 FROM chat_rooms WHERE id = $1 AND (buyer_id = $2 OR seller_id = $2))`
	if err := r.db.GetContext(ctx, &ok, query, roomID, userID); err != nil {
		return false, fmt.Errorf("chat repository: is participant %w", err)
	}
	return ok, nil
}

// Сообщения старше этого срока не учитываются при поиске активных чатов.
const activeRoomWindow = 30 * 24 * time.Hour

// ActiveRoomIDs возвращает чаты пользователя с активностью за последний месяц.
func (r *ChatRepository) ActiveRoomIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	query := `
		SELECT id FROM chat_rooms
		WHERE (buyer_id = $1 OR seller_id = $1) AND last_message_at > $2
	`
	if err := r.db.SelectContext(ctx, &ids, query, userID, time.Now().Add(-activeRoomWindow)); err != nil {
		return nil, fmt.Errorf("chat repository: active rooms %w", err)
	}
	return ids, nil
}
