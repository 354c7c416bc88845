package gallery

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Cache wraps a Fetcher with a TTL. Within the TTL every call is served
// from memory; after it, the next call refreshes. If the refresh fails and
// a previous result exists, the stale result is served instead of the
// error — a quota blip should not blank the gallery.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	videos    []Video
	fetchedAt time.Time
}

func NewCache(fetcher Fetcher, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{fetcher: fetcher, ttl: ttl, logger: logger}
}

// Videos returns the gallery contents, refreshing if the TTL has lapsed.
func (c *Cache) Videos(ctx context.Context) ([]Video, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl
	if fresh {
		return c.copyVideos(), nil
	}

	videos, err := c.fetcher.Fetch(ctx)
	if err != nil {
		if c.fetchedAt.IsZero() {
			return nil, err
		}
		c.logger.Warn("gallery refresh failed, serving stale results",
			slog.String("error", err.Error()),
			slog.Time("fetchedAt", c.fetchedAt),
		)
		return c.copyVideos(), nil
	}

	c.videos = videos
	c.fetchedAt = time.Now()
	return c.copyVideos(), nil
}

func (c *Cache) copyVideos() []Video {
	out := make([]Video, len(c.videos))
	copy(out, c.videos)
	return out
}
