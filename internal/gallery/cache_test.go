package gallery

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	videos []Video
	err    error
	calls  int
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]Video, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.videos, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCache_ServesFromMemoryWithinTTL(t *testing.T) {
	fetcher := &fakeFetcher{videos: []Video{{ID: "v1", Title: "Night dive"}}}
	cache := NewCache(fetcher, time.Hour, testLogger())
	ctx := context.Background()

	first, err := cache.Videos(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := cache.Videos(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls, "second call within TTL must not refetch")
}

func TestCache_RefreshesAfterTTL(t *testing.T) {
	fetcher := &fakeFetcher{videos: []Video{{ID: "v1"}}}
	cache := NewCache(fetcher, time.Nanosecond, testLogger())
	ctx := context.Background()

	_, err := cache.Videos(ctx)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	fetcher.videos = []Video{{ID: "v1"}, {ID: "v2"}}
	got, err := cache.Videos(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, fetcher.calls)
}

func TestCache_ServesStaleOnRefreshFailure(t *testing.T) {
	fetcher := &fakeFetcher{videos: []Video{{ID: "v1", Title: "Wreck dive"}}}
	cache := NewCache(fetcher, time.Nanosecond, testLogger())
	ctx := context.Background()

	_, err := cache.Videos(ctx)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	fetcher.err = errors.New("quota exceeded")

	got, err := cache.Videos(ctx)
	require.NoError(t, err, "a failed refresh with a cached result must not surface")
	require.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].ID)
}

func TestCache_FirstFetchFailureIsAnError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("quota exceeded")}
	cache := NewCache(fetcher, time.Hour, testLogger())

	_, err := cache.Videos(context.Background())
	assert.Error(t, err, "no stale result to fall back on")
}

func TestCache_ReturnsCopies(t *testing.T) {
	fetcher := &fakeFetcher{videos: []Video{{ID: "v1", Title: "original"}}}
	cache := NewCache(fetcher, time.Hour, testLogger())

	got, err := cache.Videos(context.Background())
	require.NoError(t, err)
	got[0].Title = "mutated"

	again, _ := cache.Videos(context.Background())
	assert.Equal(t, "original", again[0].Title)
}
