package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/marcodive/divesite/internal/model"
)

// RedisBridge relays the change feed through a Redis pub/sub channel so
// that several server instances share one feed.
//
// Send publishes to Redis only; the relay loop (Run) receives every message
// — including this instance's own — and republishes it on the local Broker.
// Local delivery therefore always takes the same path, whether the insert
// happened here or on another instance.
type RedisBridge struct {
	client  *redis.Client
	broker  *Broker
	channel string
	logger  *slog.Logger
}

var _ Sink = (*RedisBridge)(nil)

// NewRedisBridge connects to Redis and verifies the connection.
func NewRedisBridge(ctx context.Context, addr, password string, db int, broker *Broker, channel string, logger *slog.Logger) (*RedisBridge, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("feed: ping redis: %w", err)
	}

	return &RedisBridge{
		client:  client,
		broker:  broker,
		channel: channel,
		logger:  logger,
	}, nil
}

// Send publishes a review insert to the shared Redis channel.
func (b *RedisBridge) Send(ctx context.Context, review model.Review) error {
	payload, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("feed: marshaling review %s: %w", review.ID, err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("feed: publishing review %s: %w", review.ID, err)
	}
	return nil
}

// Run subscribes to the Redis channel and republishes every message on the
// local Broker. It blocks until ctx is cancelled; run it in a goroutine
// from the composition root.
func (b *RedisBridge) Run(ctx context.Context) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	b.logger.Info("feed: redis relay started", slog.String("channel", b.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var review model.Review
			if err := json.Unmarshal([]byte(msg.Payload), &review); err != nil {
				b.logger.Warn("feed: discarding malformed relay payload",
					slog.String("error", err.Error()),
				)
				continue
			}
			b.broker.Publish(review)
		}
	}
}

// Close releases the Redis connection.
func (b *RedisBridge) Close() error {
	return b.client.Close()
}
