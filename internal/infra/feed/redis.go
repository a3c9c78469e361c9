package feed

import (
	"context"
	"encoding/json"
	"log/slog"

	"wave-studio-api/internal/pkg/config"

	"github.com/redis/go-redis/v9"
)

// Publisher pushes booking change events onto a pub/sub channel so
// connected dashboards can refresh without polling. Delivery is
// best-effort: subscribers that miss an event pick up the change on
// their next poll, so publish failures are logged and swallowed.
type Publisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewPublisher(client *redis.Client, cfg config.RedisConfig, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, channel: cfg.BookingChannel, logger: logger}
}

type changeEvent struct {
	EventType string `json:"event_type"`
	New       any    `json:"new,omitempty"`
	Old       any    `json:"old,omitempty"`
}

func (p *Publisher) BookingChanged(ctx context.Context, eventType string, newRow, oldRow any) {
	body, err := json.Marshal(changeEvent{EventType: eventType, New: newRow, Old: oldRow})
	if err != nil {
		p.logger.Error("failed to encode change event", "event_type", eventType, "error", err)
		return
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		p.logger.Warn("failed to publish change event", "event_type", eventType, "error", err)
	}
}

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	cleanup := func() { client.Close() }
	return client, cleanup, nil
}
