// Package feed is the review change feed: every successfully inserted
// review is announced to all live subscribers (SSE connections, embedded
// list controllers).
//
// The Broker is purely in-process. For multi-instance deployments the
// RedisBridge (redis.go) relays announcements through Redis pub/sub so
// every instance's Broker sees every insert.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marcodive/divesite/internal/model"
)

// subscriberBuffer is the per-subscriber channel capacity. A browser tab
// that stops reading its SSE stream should not be able to wedge Publish.
const subscriberBuffer = 16

var (
	feedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feed_subscribers",
		Help: "Current number of change-feed subscribers",
	})

	feedEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_events_total",
		Help: "Total review insert events published to the feed",
	})

	feedDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_events_dropped_total",
		Help: "Feed events dropped because a subscriber was too slow",
	})
)

// Sink is the announce side of the feed. The Broker is a Sink; so is the
// RedisBridge. The service layer only sees this interface.
type Sink interface {
	Send(ctx context.Context, review model.Review) error
}

// Broker fans inserted reviews out to subscribers.
//
// Delivery is best-effort: a subscriber whose buffer is full has that event
// dropped (and logged). That mirrors the store contract — the feed is a
// notification stream, not a durable log; a client that falls behind
// converges on its next full reload.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]chan model.Review
	nextID int
	closed bool
	logger *slog.Logger
}

var _ Sink = (*Broker)(nil)

func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		subs:   make(map[int]chan model.Review),
		logger: logger,
	}
}

// Subscribe registers a new feed consumer. The returned cancel function
// must be called when the consumer goes away; it closes the channel.
func (b *Broker) Subscribe() (<-chan model.Review, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan model.Review, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	b.subs[id] = ch
	feedSubscribers.Set(float64(len(b.subs)))

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
			feedSubscribers.Set(float64(len(b.subs)))
		}
	}
	return ch, cancel
}

// Publish announces a review to every subscriber without blocking.
func (b *Broker) Publish(review model.Review) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	feedEventsTotal.Inc()
	for id, ch := range b.subs {
		select {
		case ch <- review:
		default:
			feedDroppedTotal.Inc()
			b.logger.Warn("feed: dropping event for slow subscriber",
				slog.Int("subscriber", id),
				slog.String("reviewID", review.ID),
			)
		}
	}
}

// Send implements Sink for the single-instance case.
func (b *Broker) Send(_ context.Context, review model.Review) error {
	b.Publish(review)
	return nil
}

// Close shuts the feed down and closes all subscriber channels.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	feedSubscribers.Set(0)
}
