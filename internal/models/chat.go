package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRoom переписка покупателя и продавца об одном товаре.
type ChatRoom struct {
	ID            uuid.UUID `db:"id" json:"id"`
	BuyerID       uuid.UUID `db:"buyer_id" json:"buyer_id"`
	SellerID      uuid.UUID `db:"seller_id" json:"seller_id"`
	ProductID     uuid.UUID `db:"product_id" json:"product_id"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// HasParticipant сообщает, является ли пользователь участником чата.
func (r *ChatRoom) HasParticipant(userID uuid.UUID) bool {
	return r.BuyerID == userID || r.SellerID == userID
}

// Counterpart возвращает второго участника.
func (r *ChatRoom) Counterpart(userID uuid.UUID) uuid.UUID {
	if r.BuyerID == userID {
		return r.SellerID
	}
	return r.BuyerID
}

// ChatRoomSummary строка списка чатов пользователя.
type ChatRoomSummary struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	BuyerID           uuid.UUID  `db:"buyer_id" json:"buyer_id"`
	SellerID          uuid.UUID  `db:"seller_id" json:"seller_id"`
	ProductID         uuid.UUID  `db:"product_id" json:"product_id"`
	ProductTitle      string     `db:"product_title" json:"product_title"`
	ProductImage      *string    `db:"product_image" json:"product_image,omitempty"`
	CounterpartID     uuid.UUID  `db:"counterpart_id" json:"counterpart_id"`
	CounterpartName   string     `db:"counterpart_name" json:"counterpart_name"`
	CounterpartAvatar *string    `db:"counterpart_avatar" json:"counterpart_avatar,omitempty"`
	LastMessage       *string    `db:"last_message" json:"last_message,omitempty"`
	LastMessageSender *uuid.UUID `db:"last_message_sender" json:"last_message_sender,omitempty"`
	LastMessageAt     time.Time  `db:"last_message_at" json:"last_message_at"`
	UnreadCount       int        `db:"unread_count" json:"unread_count"`
}

// Message сообщение в чате.
type Message struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RoomID    uuid.UUID `db:"room_id" json:"room_id"`
	SenderID  uuid.UUID `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
