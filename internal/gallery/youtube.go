// Package gallery fetches the dive video gallery from a YouTube playlist.
//
// The playlist rarely changes and the YouTube Data API has a daily quota,
// so results are cached with a TTL and served stale if a refresh fails.
package gallery

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Video is one gallery entry.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	PublishedAt  string `json:"publishedAt"`
}

// Fetcher retrieves the current gallery contents. The Cache wraps one.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Video, error)
}

// YouTubeFetcher pulls videos from a playlist via the YouTube Data API v3.
type YouTubeFetcher struct {
	service    *youtube.Service
	playlistID string
	maxResults int64
}

// NewYouTubeFetcher creates a fetcher authenticated with an API key.
// maxResults caps how many videos the gallery shows.
func NewYouTubeFetcher(ctx context.Context, apiKey, playlistID string, maxResults int64) (*YouTubeFetcher, error) {
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gallery: creating YouTube client: %w", err)
	}

	return &YouTubeFetcher{
		service:    service,
		playlistID: playlistID,
		maxResults: maxResults,
	}, nil
}

// Fetch lists the playlist's items, newest additions first as YouTube
// returns them.
func (f *YouTubeFetcher) Fetch(ctx context.Context) ([]Video, error) {
	resp, err := f.service.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(f.playlistID).
		MaxResults(f.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("gallery: listing playlist items: %w", err)
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.ResourceId == nil {
			continue
		}

		v := Video{
			ID:          item.Snippet.ResourceId.VideoId,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			PublishedAt: item.Snippet.PublishedAt,
		}
		if t := item.Snippet.Thumbnails; t != nil {
			// Prefer the largest thumbnail YouTube provides.
			switch {
			case t.High != nil:
				v.ThumbnailURL = t.High.Url
			case t.Medium != nil:
				v.ThumbnailURL = t.Medium.Url
			case t.Default != nil:
				v.ThumbnailURL = t.Default.Url
			}
		}
		videos = append(videos, v)
	}

	return videos, nil
}
