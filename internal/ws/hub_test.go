package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelay struct {
	mu       sync.Mutex
	err      error
	messages map[uuid.UUID][][]byte
}

func (r *fakeRelay) Publish(_ context.Context, roomID uuid.UUID, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.messages == nil {
		r.messages = make(map[uuid.UUID][][]byte)
	}
	r.messages[roomID] = append(r.messages[roomID], payload)
	return nil
}

func (r *fakeRelay) count(roomID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages[roomID])
}

func allowRooms(allowed ...uuid.UUID) RoomAuthorizer {
	return RoomAuthorizerFunc(func(_ context.Context, _, roomID uuid.UUID) (bool, error) {
		for _, id := range allowed {
			if id == roomID {
				return true, nil
			}
		}
		return false, nil
	})
}

func startHub(t *testing.T, authorizer RoomAuthorizer) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(ctx, authorizer)
	go hub.Run()
	return hub
}

func connect(t *testing.T, hub *Hub, userID uuid.UUID) *Client {
	t.Helper()
	client := NewClient(nil, hub, userID)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.Online(userID) }, time.Second, 5*time.Millisecond)
	return client
}

func receive(t *testing.T, client *Client) Envelope {
	t.Helper()
	select {
	case raw, ok := <-client.send:
		require.True(t, ok, "канал закрыт")
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("нет сообщения")
		return Envelope{}
	}
}

func assertSilent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case raw := <-client.send:
		t.Fatalf("лишнее сообщение: %s", raw)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHub_PublishToUser(t *testing.T) {
	hub := startHub(t, allowRooms())
	userID := uuid.New()
	first := connect(t, hub, userID)
	second := connect(t, hub, userID)
	other := connect(t, hub, uuid.New())

	hub.PublishToUser(userID, "notification", map[string]string{"title": "Новый отзыв"})

	assert.Equal(t, "notification", receive(t, first).Type)
	assert.Equal(t, "notification", receive(t, second).Type)
	assertSilent(t, other)
}

func TestHub_SubscribeRequiresParticipation(t *testing.T) {
	roomID := uuid.New()
	hub := startHub(t, allowRooms(roomID))
	client := connect(t, hub, uuid.New())

	err := hub.Subscribe(context.Background(), client, uuid.New())
	assert.ErrorIs(t, err, ErrNotParticipant)

	require.NoError(t, hub.Subscribe(context.Background(), client, roomID))
	hub.PublishToRoom(roomID, "message", map[string]string{"content": "привет"})
	assert.Equal(t, "message", receive(t, client).Type)

	hub.Unsubscribe(client, roomID)
	hub.PublishToRoom(roomID, "message", nil)
	assertSilent(t, client)
}

func TestHub_SubscribeAuthorizerError(t *testing.T) {
	boom := errors.New("db down")
	hub := startHub(t, RoomAuthorizerFunc(func(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
		return false, boom
	}))
	client := connect(t, hub, uuid.New())

	assert.ErrorIs(t, hub.Subscribe(context.Background(), client, uuid.New()), boom)
}

func TestHub_RelayDelivery(t *testing.T) {
	roomID := uuid.New()
	hub := startHub(t, allowRooms(roomID))
	relay := &fakeRelay{}
	hub.SetRelay(relay)

	client := connect(t, hub, uuid.New())
	require.NoError(t, hub.Subscribe(context.Background(), client, roomID))

	hub.PublishToRoom(roomID, "message", nil)
	assert.Equal(t, 1, relay.count(roomID))
	assertSilent(t, client)

	// Доставка происходит, когда событие возвращается из шины.
	relay.mu.Lock()
	raw := relay.messages[roomID][0]
	relay.mu.Unlock()
	hub.DeliverRoom(roomID, raw)
	assert.Equal(t, "message", receive(t, client).Type)
}

func TestHub_RelayFailureFallsBackToLocal(t *testing.T) {
	roomID := uuid.New()
	hub := startHub(t, allowRooms(roomID))
	hub.SetRelay(&fakeRelay{err: errors.New("connection refused")})

	client := connect(t, hub, uuid.New())
	require.NoError(t, hub.Subscribe(context.Background(), client, roomID))

	hub.PublishToRoom(roomID, "message_read", nil)
	assert.Equal(t, "message_read", receive(t, client).Type)
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	roomID := uuid.New()
	hub := startHub(t, allowRooms(roomID))
	userID := uuid.New()
	client := connect(t, hub, userID)
	require.NoError(t, hub.Subscribe(context.Background(), client, roomID))

	client.Close()
	require.Eventually(t, func() bool { return !hub.Online(userID) }, time.Second, 5*time.Millisecond)

	_, ok := <-client.send
	assert.False(t, ok)

	hub.mu.RLock()
	_, subscribed := hub.rooms[roomID]
	hub.mu.RUnlock()
	assert.False(t, subscribed)

	// Повторное закрытие и отправка в закрытого клиента безопасны.
	client.Close()
	assert.True(t, client.enqueue([]byte("{}")))
}

func TestHub_SlowClientDisconnected(t *testing.T) {
	hub := startHub(t, allowRooms())
	userID := uuid.New()
	client := connect(t, hub, userID)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, client.enqueue([]byte("{}")))
	}
	hub.PublishToUser(userID, "notification", nil)

	require.Eventually(t, func() bool { return !hub.Online(userID) }, time.Second, 5*time.Millisecond)
}
