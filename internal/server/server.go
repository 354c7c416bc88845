// Package server is the composition root: it builds every component from
// the config, mounts the routes, and owns startup and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcodive/divesite/internal/auth"
	"github.com/marcodive/divesite/internal/config"
	"github.com/marcodive/divesite/internal/feed"
	"github.com/marcodive/divesite/internal/gallery"
	"github.com/marcodive/divesite/internal/handler"
	"github.com/marcodive/divesite/internal/middleware"
	"github.com/marcodive/divesite/internal/notify"
	"github.com/marcodive/divesite/internal/repository/sqlite"
	"github.com/marcodive/divesite/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Server owns the HTTP listener and every long-lived component behind it.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	httpServer *http.Server
	db         *sqlite.DB
	broker     *feed.Broker
	bridge     *feed.RedisBridge // nil without REDIS_ADDR
}

// New builds the full component graph. Optional features degrade instead
// of failing: no JWT secret disables auth routes, no YouTube key disables
// the gallery, no Redis keeps the feed in-process.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	broker := feed.NewBroker(logger)

	// With Redis configured, inserts publish there and come back through
	// the relay; otherwise the broker delivers directly.
	var sink feed.Sink = broker
	var bridge *feed.RedisBridge
	if cfg.RedisAddr != "" {
		bridge, err = feed.NewRedisBridge(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, broker, cfg.FeedChannel, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		sink = bridge
	}

	var notifier service.Notifier
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.WebhookURL, cfg.WebhookToken, cfg.WebhookTimeout, logger)
	}

	reviewSvc := service.NewReviewService(db, db, sink, notifier, logger)
	reviewHandler := handler.NewReviewHandler(reviewSvc, broker, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/reviews", reviewHandler.HandleList)
	r.Get("/api/reviews/feed", reviewHandler.HandleFeed)

	if cfg.AuthEnabled() {
		tokens, err := auth.NewTokenService(cfg.JWTSecret)
		if err != nil {
			db.Close()
			return nil, err
		}

		var google *auth.GoogleProvider
		if cfg.GoogleEnabled() {
			google = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
		}

		authSvc := service.NewAuthService(db, tokens, auth.NewPasswordService(), logger)
		authHandler := handler.NewAuthHandler(authSvc, google, false, logger)

		if google != nil {
			r.Get("/auth/google/login", authHandler.HandleGoogleLogin)
			r.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
		}
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/api/reviews", reviewHandler.HandleCreate)
			r.Get("/api/me", authHandler.HandleMe)
		})
	} else {
		logger.Warn("JWT_SECRET not set: auth routes and review submission disabled")
	}

	if cfg.YouTubeAPIKey != "" && cfg.YouTubePlaylistID != "" {
		fetcher, err := gallery.NewYouTubeFetcher(ctx, cfg.YouTubeAPIKey, cfg.YouTubePlaylistID, cfg.GalleryMaxVideos)
		if err != nil {
			db.Close()
			return nil, err
		}
		cache := gallery.NewCache(fetcher, cfg.GalleryCacheTTL, logger)
		galleryHandler := handler.NewGalleryHandler(cache, logger)
		r.Get("/api/gallery", galleryHandler.HandleList)
	} else {
		logger.Info("YouTube credentials not set: gallery disabled")
	}

	return &Server{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		db:     db,
		broker: broker,
		bridge: bridge,
	}, nil
}

// Start runs the server until SIGINT/SIGTERM or a listener error, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if s.bridge != nil {
		go s.bridge.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.Int("port", s.cfg.Port))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.shutdown()
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
		return s.shutdown()
	}
}

// shutdown stops accepting connections, ends the SSE streams by closing
// the broker, and releases the database and Redis connections.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Closing the broker first ends every SSE stream, so Shutdown isn't
	// stuck waiting on connections that would otherwise never finish.
	s.broker.Close()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Error("http shutdown", slog.String("error", err.Error()))
	}

	if s.bridge != nil {
		if cerr := s.bridge.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if cerr := s.db.Close(); cerr != nil && err == nil {
		err = cerr
	}

	s.logger.Info("server stopped")
	return err
}
