// Package service holds the HTTP-facing business logic: review submission
// and listing, and the two sign-in paths. Handlers translate HTTP to these
// calls; repositories do the persistence.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marcodive/divesite/internal/apperror"
	"github.com/marcodive/divesite/internal/feed"
	"github.com/marcodive/divesite/internal/model"
	"github.com/marcodive/divesite/internal/notify"
	"github.com/marcodive/divesite/internal/repository"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateReviewInput is the submission payload after decoding. Whitespace
// is trimmed before validation so "   " fails the required check.
type CreateReviewInput struct {
	Stars   int    `json:"stars" validate:"required,gte=1,lte=5"`
	Content string `json:"content" validate:"required"`
}

// Notifier is the webhook as the service sees it.
type Notifier interface {
	SendAsync(p notify.Payload)
}

// ReviewService creates and lists reviews. Each successful create is
// announced on the change feed and, best-effort, to the webhook.
type ReviewService struct {
	reviews  repository.ReviewRepository
	users    repository.UserRepository
	sink     feed.Sink
	notifier Notifier // nil disables webhook notifications
	logger   *slog.Logger
}

func NewReviewService(
	reviews repository.ReviewRepository,
	users repository.UserRepository,
	sink feed.Sink,
	notifier Notifier,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		users:    users,
		sink:     sink,
		notifier: notifier,
		logger:   logger,
	}
}

// List returns all published reviews, newest first.
func (s *ReviewService) List(ctx context.Context) ([]model.Review, error) {
	return s.reviews.List(ctx)
}

// Create validates the input, denormalizes the author's current name and
// avatar onto the review, and persists it. The author must exist — the
// userID comes from a validated session token, so a missing user means the
// account was deleted after the token was issued.
func (s *ReviewService) Create(ctx context.Context, userID string, input CreateReviewInput) (*model.Review, error) {
	input.Content = strings.TrimSpace(input.Content)

	if err := validate.Struct(input); err != nil {
		return nil, apperror.ValidationFailed("review", "stars must be 1-5 and content must not be empty")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading review author: %w", err)
	}

	review := &model.Review{
		UserID:    user.ID,
		Name:      user.DisplayName(),
		AvatarURL: user.AvatarURL,
		Stars:     input.Stars,
		Content:   input.Content,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("creating review: %w", err)
	}

	if err := s.sink.Send(ctx, *review); err != nil {
		// The row is durable; feed delivery is advisory.
		s.logger.Warn("publishing review to change feed failed",
			slog.String("reviewID", review.ID),
			slog.String("error", err.Error()),
		)
	}

	if s.notifier != nil {
		s.notifier.SendAsync(notify.Payload{
			Name:    review.Name,
			Content: review.Content,
			Stars:   review.Stars,
		})
	}

	s.logger.Info("review created",
		slog.String("reviewID", review.ID),
		slog.String("userID", review.UserID),
		slog.Int("stars", review.Stars),
	)

	return review, nil
}
