package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/marcodive/divesite/internal/model"
	"github.com/marcodive/divesite/internal/repository"
)

// Compile-time check that *DB implements repository.ReviewRepository.
var _ repository.ReviewRepository = (*DB)(nil)

// Create inserts a new review. The store assigns the ID (xid — URL-safe and
// time-sortable) and InsertedAt; both are written back into the caller's
// struct, which is what the change feed then broadcasts.
//
// time.Now is monotonic within a process, which gives the "inserted_at is
// non-decreasing in store-assignment order" guarantee the sorted list
// relies on.
func (db *DB) Create(ctx context.Context, review *model.Review) error {
	review.ID = xid.New().String()
	review.InsertedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO reviews (id, user_id, name, avatar_url, stars, content, inserted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.ID,
		review.UserID,
		review.Name,
		review.AvatarURL,
		review.Stars,
		review.Content,
		review.InsertedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating review: %w", err)
	}

	return nil
}

// List returns every review, newest first. The id tiebreaker keeps the
// order stable when two inserts land in the same clock tick (xids are
// themselves time-ordered).
func (db *DB) List(ctx context.Context) ([]model.Review, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, name, avatar_url, stars, content, inserted_at
		 FROM reviews
		 ORDER BY inserted_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]model.Review, 0, 32)

	for rows.Next() {
		var r model.Review
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.Name, &r.AvatarURL,
			&r.Stars, &r.Content, &r.InsertedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning review row: %w", err)
		}
		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reviews: %w", err)
	}

	return reviews, nil
}
