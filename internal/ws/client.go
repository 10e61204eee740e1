package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/preloved-backend/internal/goroutine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 32
)

// Кадры, которые принимает сервер.
const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FramePing        = "ping"
)

// Ответы сервера на кадры клиента.
const (
	EventSubscribed   = "subscribed"
	EventUnsubscribed = "unsubscribed"
	EventPong         = "pong"
	EventError        = "error"
)

// Frame входящий кадр клиента.
type Frame struct {
	Type   string    `json:"type"`
	RoomID uuid.UUID `json:"room_id"`
}

// Client одно websocket подключение пользователя.
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	userID uuid.UUID
	// rooms меняется только под hub.mu.
	rooms map[uuid.UUID]struct{}

	mu     sync.Mutex
	send   chan []byte
	closed bool
	once   sync.Once
}

// NewClient создаёт клиента для подключения.
func NewClient(conn *websocket.Conn, hub *Hub, userID uuid.UUID) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		userID: userID,
		rooms:  make(map[uuid.UUID]struct{}),
		send:   make(chan []byte, sendBuffer),
	}
}

// Run обслуживает подключение до его закрытия.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	goroutine.SafeGo(c.writePump)
	c.readPump(ctx)
}

// Close отключает клиента от хаба и закрывает соединение.
func (c *Client) Close() {
	c.once.Do(func() {
		c.hub.Unregister(c)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// enqueue ставит сообщение в очередь. false означает, что очередь переполнена.
func (c *Client) enqueue(raw []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return true
	}
	select {
	case c.send <- raw:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) reply(event string, data interface{}) {
	raw, err := encode(event, data)
	if err != nil {
		return
	}
	c.enqueue(raw)
}

func (c *Client) readPump(ctx context.Context) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.WithFields(logrus.Fields{"user_id": c.userID, "error": err}).
					Debug("ws: соединение прервано")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		c.handleFrame(ctx, raw)
	}
}

func (c *Client) handleFrame(ctx context.Context, raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.reply(EventError, map[string]string{"message": "некорректный кадр"})
		return
	}

	switch frame.Type {
	case FrameSubscribe:
		if frame.RoomID == uuid.Nil {
			c.reply(EventError, map[string]string{"message": "room_id обязателен"})
			return
		}
		if err := c.hub.Subscribe(ctx, c, frame.RoomID); err != nil {
			if !errors.Is(err, ErrNotParticipant) && !errors.Is(err, ErrClientClosed) {
				c.hub.log.WithFields(logrus.Fields{"room_id": frame.RoomID, "error": err}).
					Error("ws: не удалось проверить участие в чате")
			}
			c.reply(EventError, map[string]interface{}{"message": "нет доступа к чату", "room_id": frame.RoomID})
			return
		}
		c.reply(EventSubscribed, map[string]uuid.UUID{"room_id": frame.RoomID})

	case FrameUnsubscribe:
		c.hub.Unsubscribe(c, frame.RoomID)
		c.reply(EventUnsubscribed, map[string]uuid.UUID{"room_id": frame.RoomID})

	case FramePing:
		c.reply(EventPong, nil)

	default:
		c.reply(EventError, map[string]string{"message": "неизвестный тип кадра"})
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
