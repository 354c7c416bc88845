// Package model defines the data structures used throughout the application.
package model

import "time"

// Review is a single user-submitted testimonial.
//
// The submitting user's display name and avatar are denormalized into the
// row at insert time. A later profile change (or account deletion) must not
// retroactively alter a published review, so we deliberately do NOT join
// against the users table when listing.
//
// InsertedAt is assigned by the store and is the sole sort key — the
// visible list is always ordered by it, newest first. Reviews are immutable
// once inserted: there is no edit or delete path.
type Review struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatarUrl"`
	Stars      int       `json:"stars"`
	Content    string    `json:"content"`
	InsertedAt time.Time `json:"insertedAt"`
}

// DefaultStars is the rating pre-selected in a fresh submission form.
const DefaultStars = 5
