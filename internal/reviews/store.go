package reviews

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/marcodive/divesite/internal/feed"
	"github.com/marcodive/divesite/internal/model"
	"github.com/marcodive/divesite/internal/repository"
)

// RepositoryStore adapts a ReviewRepository to the controller's Store and
// forwards each successful insert to the change feed. The repository write
// is the source of truth; feed delivery failures are logged and do not fail
// the insert.
type RepositoryStore struct {
	repo   repository.ReviewRepository
	sink   feed.Sink
	logger *slog.Logger
}

func NewRepositoryStore(repo repository.ReviewRepository, sink feed.Sink, logger *slog.Logger) *RepositoryStore {
	return &RepositoryStore{repo: repo, sink: sink, logger: logger}
}

func (s *RepositoryStore) ListAll(ctx context.Context) ([]model.Review, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	return items, nil
}

func (s *RepositoryStore) Insert(ctx context.Context, review *model.Review) error {
	if err := s.repo.Create(ctx, review); err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}

	if err := s.sink.Send(ctx, *review); err != nil {
		s.logger.Warn("publishing review to change feed failed",
			slog.String("reviewID", review.ID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
