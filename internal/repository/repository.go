package repository

import (
	"context"

	"github.com/marcodive/divesite/internal/model"
)

// ReviewRepository is the review store contract: insert one row (the store
// assigns ID and InsertedAt) and list every row newest-first. Reviews are
// immutable, so there is no update or delete.
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	List(ctx context.Context) ([]model.Review, error)
}

type UserRepository interface {
	// UpsertGoogle inserts or updates a user keyed on their Google subject ID.
	UpsertGoogle(ctx context.Context, user *model.User) error
	CreateWithPassword(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}
