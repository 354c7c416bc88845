package session

import (
	"context"
	"sync"
)

// Broadcaster is an in-process Tracker: whoever owns the sign-in flow calls
// Set, and registered listeners are notified. Used when the reviews core is
// embedded next to the auth handlers, and by tests.
type Broadcaster struct {
	mu        sync.Mutex
	current   *Session
	listeners map[int]func(*Session)
	nextID    int
}

var _ Tracker = (*Broadcaster)(nil)

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[int]func(*Session))}
}

// Set replaces the current session and notifies listeners. Pass nil on
// sign-out. Listeners run synchronously on the caller's goroutine, in
// unspecified order.
func (b *Broadcaster) Set(s *Session) {
	b.mu.Lock()
	b.current = s
	fns := make([]func(*Session), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	// Invoke outside the lock so a listener may call back into the
	// broadcaster (e.g. Current) without deadlocking.
	for _, fn := range fns {
		fn(s)
	}
}

// Current implements Tracker.
func (b *Broadcaster) Current(_ context.Context) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, nil
}

// OnChange implements Tracker.
func (b *Broadcaster) OnChange(fn func(*Session)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// SignOut implements Tracker.
func (b *Broadcaster) SignOut(_ context.Context) error {
	b.Set(nil)
	return nil
}
