package ws

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotParticipant пользователь не участник чата.
var ErrNotParticipant = errors.New("ws: not a room participant")

// ErrClientClosed подписка отключённого клиента.
var ErrClientClosed = errors.New("ws: client closed")

// RoomAuthorizer проверяет право подписки на события чата.
type RoomAuthorizer interface {
	CanJoinRoom(ctx context.Context, userID, roomID uuid.UUID) (bool, error)
}

// RoomAuthorizerFunc адаптирует функцию к RoomAuthorizer.
type RoomAuthorizerFunc func(ctx context.Context, userID, roomID uuid.UUID) (bool, error)

func (f RoomAuthorizerFunc) CanJoinRoom(ctx context.Context, userID, roomID uuid.UUID) (bool, error) {
	return f(ctx, userID, roomID)
}
