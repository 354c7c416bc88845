package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/marcodive/divesite/internal/apperror"
	"github.com/marcodive/divesite/internal/model"
	"github.com/marcodive/divesite/internal/notify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockReviewRepo is an in-memory ReviewRepository.
type mockReviewRepo struct {
	mu        sync.Mutex
	reviews   []model.Review
	createErr error
	listErr   error
	seq       int
}

func (m *mockReviewRepo) Create(ctx context.Context, review *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	review.ID = fmt.Sprintf("r%d", m.seq)
	review.InsertedAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Minute)
	m.reviews = append(m.reviews, *review)
	return nil
}

func (m *mockReviewRepo) List(ctx context.Context) ([]model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Review, len(m.reviews))
	copy(out, m.reviews)
	return out, nil
}

// mockUserRepo is an in-memory UserRepository keyed by ID and email.
type mockUserRepo struct {
	mu        sync.Mutex
	users     map[string]*model.User
	createErr error
	seq       int
}

func newMockUserRepo(users ...*model.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) UpsertGoogle(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.GoogleID == user.GoogleID {
			existing.Email = user.Email
			existing.Name = user.Name
			existing.AvatarURL = user.AvatarURL
			*user = *existing
			return nil
		}
	}
	m.seq++
	user.ID = fmt.Sprintf("u%d", m.seq)
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) CreateWithPassword(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	m.seq++
	user.ID = fmt.Sprintf("u%d", m.seq)
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

// mockSink records feed announcements.
type mockSink struct {
	mu      sync.Mutex
	sent    []model.Review
	sendErr error
}

func (m *mockSink) Send(ctx context.Context, review model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, review)
	return nil
}

// mockNotifier records webhook payloads.
type mockNotifier struct {
	mu       sync.Mutex
	payloads []notify.Payload
}

func (m *mockNotifier) SendAsync(p notify.Payload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, p)
}
