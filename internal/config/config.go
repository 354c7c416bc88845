// Package config loads server configuration from the environment.
//
// Configuration is a flat struct parsed with caarlos0/env. A local .env
// file is loaded first (if present) so development doesn't require
// exporting a dozen variables; in production the real environment wins.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"data/divesite.db"`

	// Auth. JWT_SECRET must be a long random string; if unset, auth (and
	// therefore review submission) is disabled but the site still serves.
	JWTSecret          string `env:"JWT_SECRET"`
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`

	// Review webhook notification (best-effort, fire-and-forget).
	WebhookURL     string        `env:"REVIEW_WEBHOOK_URL"`
	WebhookToken   string        `env:"REVIEW_WEBHOOK_TOKEN"`
	WebhookTimeout time.Duration `env:"REVIEW_WEBHOOK_TIMEOUT" envDefault:"5s"`

	// Change feed. With no Redis address the feed is in-process only,
	// which is correct for the usual single-binary deployment.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`
	FeedChannel   string `env:"FEED_CHANNEL" envDefault:"divesite:reviews"`

	// Video gallery.
	YouTubeAPIKey     string        `env:"YOUTUBE_API_KEY"`
	YouTubePlaylistID string        `env:"YOUTUBE_UPLOADS_PLAYLIST"`
	GalleryCacheTTL   time.Duration `env:"GALLERY_CACHE_TTL" envDefault:"15m"`
	GalleryMaxVideos  int64         `env:"GALLERY_MAX_VIDEOS" envDefault:"12"`
}

// Load reads .env (optional) and the process environment.
func Load() (*Config, error) {
	// Missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.GoogleCallbackURL == "" {
		cfg.GoogleCallbackURL = fmt.Sprintf("http://localhost:%d/auth/google/callback", cfg.Port)
	}

	return cfg, nil
}

// AuthEnabled reports whether JWT sessions can be issued at all.
func (c *Config) AuthEnabled() bool { return c.JWTSecret != "" }

// GoogleEnabled reports whether the Google OAuth routes should be mounted.
func (c *Config) GoogleEnabled() bool {
	return c.AuthEnabled() && c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
