// Package reviews implements the review list synchronization and
// submission state machine: one in-memory, time-ordered view of the
// published reviews, kept consistent across an initial load, session
// changes (full reload), and live insert notifications from the change
// feed, plus the guarded submit flow that writes through the store.
package reviews

import (
	"sort"

	"github.com/marcodive/divesite/internal/model"
)

// List is an ordered collection of reviews, newest first by InsertedAt.
//
// The order is maintained defensively: Replace re-sorts whatever the store
// returned, and Insert places each event by timestamp instead of blindly
// prepending. Correctness therefore never depends on the change feed
// delivering in insertion order. Inserts also deduplicate by ID, which
// makes a reload racing a live insert converge instead of double-listing.
//
// List is not safe for concurrent use; the Controller serializes access.
type List struct {
	items []model.Review
}

// Replace swaps in a freshly fetched list, restoring the descending order
// if the source didn't provide it.
func (l *List) Replace(items []model.Review) {
	l.items = make([]model.Review, len(items))
	copy(l.items, items)

	sort.SliceStable(l.items, func(i, j int) bool {
		return l.items[i].InsertedAt.After(l.items[j].InsertedAt)
	})
}

// Insert merges one review into sorted position. Among equal timestamps
// the newcomer goes first, preserving prepend behavior for feed deliveries
// within the same clock tick. Returns false if the ID is already present.
func (l *List) Insert(r model.Review) bool {
	for i := range l.items {
		if l.items[i].ID == r.ID {
			return false
		}
	}

	pos := sort.Search(len(l.items), func(i int) bool {
		return !l.items[i].InsertedAt.After(r.InsertedAt)
	})

	l.items = append(l.items, model.Review{})
	copy(l.items[pos+1:], l.items[pos:])
	l.items[pos] = r
	return true
}

// Clear empties the list (used when a reload fails).
func (l *List) Clear() {
	l.items = nil
}

// Items returns a copy of the current list, newest first.
func (l *List) Items() []model.Review {
	out := make([]model.Review, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of reviews.
func (l *List) Len() int {
	return len(l.items)
}
