package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/preloved-backend/internal/goroutine"
	"github.com/ignatzorin/preloved-backend/internal/logger"
	"github.com/ignatzorin/preloved-backend/internal/metrics"
)

// Relay пересылает события чатов между экземплярами сервиса.
type Relay interface {
	Publish(ctx context.Context, roomID uuid.UUID, payload []byte) error
}

// Envelope формат всех сообщений, которые сервер отправляет клиенту.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub управляет подключениями: персональными каналами пользователей и подписками на чаты.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	rooms      map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	authorizer RoomAuthorizer
	relay      Relay
	ctx        context.Context
	log        *logrus.Entry
}

// NewHub создаёт хаб. Проверка участия в чате обязательна.
func NewHub(ctx context.Context, authorizer RoomAuthorizer) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		rooms:      make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		authorizer: authorizer,
		ctx:        ctx,
		log:        logger.WithComponent("ws"),
	}
}

// SetRelay включает пересылку событий чатов через внешнюю шину.
// После этого события чатов доставляются только через DeliverRoom.
func (h *Hub) SetRelay(relay Relay) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.relay = relay
}

// Run запускает главный цикл хаба до отмены контекста.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister удаляет клиента и все его подписки.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// PublishToUser отправляет событие во все подключения пользователя.
func (h *Hub) PublishToUser(userID uuid.UUID, event string, payload interface{}) {
	raw, err := encode(event, payload)
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("ws: не удалось сериализовать событие")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(h.clients[userID], raw)
}

// PublishToRoom отправляет событие подписчикам чата. При включённой шине
// событие уходит в неё, а локальная доставка происходит при получении.
func (h *Hub) PublishToRoom(roomID uuid.UUID, event string, payload interface{}) {
	raw, err := encode(event, payload)
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("ws: не удалось сериализовать событие")
		return
	}

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()

	if relay != nil {
		err := relay.Publish(h.ctx, roomID, raw)
		if err == nil {
			return
		}
		metrics.RelayFailures.Inc()
		h.log.WithFields(logrus.Fields{"room_id": roomID, "error": err}).
			Warn("ws: шина недоступна, доставляем локально")
	}
	h.DeliverRoom(roomID, raw)
}

// DeliverRoom доставляет готовое сообщение локальным подписчикам чата.
func (h *Hub) DeliverRoom(roomID uuid.UUID, raw []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(h.rooms[roomID], raw)
}

// Subscribe подписывает клиента на чат после проверки участия.
func (h *Hub) Subscribe(ctx context.Context, client *Client, roomID uuid.UUID) error {
	ok, err := h.authorizer.CanJoinRoom(ctx, client.userID, roomID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID][client]; !ok {
		return ErrClientClosed
	}
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][client] = struct{}{}
	client.rooms[roomID] = struct{}{}
	return nil
}

// Unsubscribe отписывает клиента от чата.
func (h *Hub) Unsubscribe(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveRoom(client, roomID)
}

// Online сообщает, есть ли у пользователя активные подключения.
func (h *Hub) Online(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
	metrics.WSConnections.Inc()
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
	for roomID := range client.rooms {
		h.leaveRoom(client, roomID)
	}
	client.closeSend()
	metrics.WSConnections.Dec()
}

// leaveRoom вызывается под h.mu.
func (h *Hub) leaveRoom(client *Client, roomID uuid.UUID) {
	delete(client.rooms, roomID)
	if subscribers, ok := h.rooms[roomID]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// deliver вызывается под h.mu. Переполненный клиент отключается.
func (h *Hub) deliver(clients map[*Client]struct{}, raw []byte) {
	for client := range clients {
		if !client.enqueue(raw) {
			slow := client
			goroutine.SafeGo(slow.Close)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.clients {
		for client := range clients {
			client.closeSend()
			metrics.WSConnections.Dec()
		}
		delete(h.clients, userID)
	}
	h.rooms = make(map[uuid.UUID]map[*Client]struct{})
}

func encode(event string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(Envelope{Type: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("ws: encode %s: %w", event, err)
	}
	return raw, nil
}
