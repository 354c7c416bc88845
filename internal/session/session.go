// Package session models the visitor's authentication state as seen by an
// embedded client: the resolved identity, or its absence.
//
// The reviews core does not talk to the identity provider directly — it
// receives a Tracker at construction and reacts to the session values the
// tracker delivers. That keeps the core testable and keeps provider
// details (cookies, OAuth, token refresh) out of the list/submit logic.
package session

import "context"

// Session is a resolved identity. A nil *Session means signed out.
type Session struct {
	UserID    string
	Email     string
	Name      string
	AvatarURL string
}

// DisplayName is the name a review is published under: the profile's full
// name, falling back to the email address.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}

// Tracker surfaces the current session and notifies on change.
type Tracker interface {
	// Current returns the present session or nil for signed out. A failure
	// to resolve is reported as an error, but callers treat it as "none" —
	// auth trouble must never block rendering.
	Current(ctx context.Context) (*Session, error)

	// OnChange registers a listener invoked with the new session (nil on
	// sign-out) whenever the provider's state transitions. The returned
	// cancel must be called on teardown so the provider doesn't invoke
	// callbacks against a disposed consumer.
	OnChange(fn func(*Session)) (cancel func())

	// SignOut asks the provider to end the session. Listeners observe the
	// transition through OnChange.
	SignOut(ctx context.Context) error
}
