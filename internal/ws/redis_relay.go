package ws

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/preloved-backend/internal/logger"
)

const roomChannelPrefix = "room:"

// RedisRelay пересылает события чатов между экземплярами через Redis pub/sub.
type RedisRelay struct {
	client *redis.Client
	log    *logrus.Entry
}

// NewRedisRelay подключается к Redis по URL вида redis://host:6379/0.
func NewRedisRelay(ctx context.Context, url string) (*RedisRelay, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("ws: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ws: ping redis: %w", err)
	}

	return &RedisRelay{client: client, log: logger.WithComponent("ws-relay")}, nil
}

func (r *RedisRelay) Publish(ctx context.Context, roomID uuid.UUID, payload []byte) error {
	if err := r.client.Publish(ctx, roomChannelPrefix+roomID.String(), payload).Err(); err != nil {
		return fmt.Errorf("ws: publish to redis: %w", err)
	}
	return nil
}

// Run слушает каналы чатов и передаёт сообщения в deliver до отмены контекста.
func (r *RedisRelay) Run(ctx context.Context, deliver func(roomID uuid.UUID, raw []byte)) {
	sub := r.client.PSubscribe(ctx, roomChannelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			roomID, err := uuid.Parse(strings.TrimPrefix(msg.Channel, roomChannelPrefix))
			if err != nil {
				r.log.WithField("channel", msg.Channel).Warn("ws: неизвестный канал")
				continue
			}
			deliver(roomID, []byte(msg.Payload))
		}
	}
}

func (r *RedisRelay) Close() error {
	return r.client.Close()
}

// Ping проверяет соединение с Redis.
func (r *RedisRelay) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
