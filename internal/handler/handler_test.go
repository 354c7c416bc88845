package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/marcodive/divesite/internal/auth"
	"github.com/marcodive/divesite/internal/feed"
	"github.com/marcodive/divesite/internal/repository/sqlite"
	"github.com/marcodive/divesite/internal/service"
)

// testEnv wires real services over an in-memory database, the way the
// server does, minus the webhook and gallery.
type testEnv struct {
	router  chi.Router
	db      *sqlite.DB
	broker  *feed.Broker
	tokens  *auth.TokenService
	auths   *service.AuthService
	reviews *service.ReviewService
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := testLogger()
	broker := feed.NewBroker(logger)
	t.Cleanup(broker.Close)

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)

	authSvc := service.NewAuthService(db, tokens, auth.NewPasswordServiceForTest(4), logger)
	reviewSvc := service.NewReviewService(db, db, broker, nil, logger)

	authHandler := NewAuthHandler(authSvc, nil, false, logger)
	reviewHandler := NewReviewHandler(reviewSvc, broker, logger)

	r := chi.NewRouter()
	r.Post("/auth/register", authHandler.HandleRegister)
	r.Post("/auth/login", authHandler.HandleLogin)
	r.Post("/auth/logout", authHandler.HandleLogout)
	r.Get("/api/reviews", reviewHandler.HandleList)
	r.Get("/api/reviews/feed", reviewHandler.HandleFeed)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Post("/api/reviews", reviewHandler.HandleCreate)
		r.Get("/api/me", authHandler.HandleMe)
	})

	return &testEnv{
		router:  r,
		db:      db,
		broker:  broker,
		tokens:  tokens,
		auths:   authSvc,
		reviews: reviewSvc,
	}
}

// signIn registers a user and returns a session cookie for them.
func (e *testEnv) signIn(t *testing.T, email, name string) (*http.Cookie, string) {
	t.Helper()

	token, user, err := e.auths.Register(context.Background(), service.RegisterInput{
		Email:    email,
		Name:     name,
		Password: "a long enough password",
	})
	require.NoError(t, err)

	return &http.Cookie{Name: auth.CookieName, Value: token}, user.ID
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}
