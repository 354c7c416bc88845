package reviews

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcodive/divesite/internal/model"
)

func reviewAt(id string, at time.Time) model.Review {
	return model.Review{ID: id, Name: "Ana", Stars: 5, Content: "x", InsertedAt: at}
}

func ids(items []model.Review) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.ID
	}
	return out
}

func TestList_ReplaceSortsNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var l List
	l.Replace([]model.Review{
		reviewAt("a", base.Add(1*time.Minute)),
		reviewAt("c", base.Add(3*time.Minute)),
		reviewAt("b", base.Add(2*time.Minute)),
	})

	assert.Equal(t, []string{"c", "b", "a"}, ids(l.Items()))
}

func TestList_InsertPlacesByTimestamp(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var l List
	l.Replace([]model.Review{
		reviewAt("b", base.Add(2*time.Minute)),
		reviewAt("a", base.Add(1*time.Minute)),
	})

	// A newer review lands at the head.
	require.True(t, l.Insert(reviewAt("c", base.Add(3*time.Minute))))
	assert.Equal(t, []string{"c", "b", "a"}, ids(l.Items()))

	// A late delivery of an older review lands in its sorted slot, not at
	// the head.
	require.True(t, l.Insert(reviewAt("z", base.Add(90*time.Second))))
	assert.Equal(t, []string{"c", "b", "z", "a"}, ids(l.Items()))
}

func TestList_InsertEqualTimestampGoesFirst(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var l List
	require.True(t, l.Insert(reviewAt("a", at)))
	require.True(t, l.Insert(reviewAt("b", at)))

	assert.Equal(t, []string{"b", "a"}, ids(l.Items()))
}

func TestList_InsertDeduplicatesByID(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var l List
	require.True(t, l.Insert(reviewAt("a", at)))
	assert.False(t, l.Insert(reviewAt("a", at.Add(time.Hour))))
	assert.Equal(t, 1, l.Len())
}

func TestList_ClearAndItemsCopy(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var l List
	l.Replace([]model.Review{reviewAt("a", at)})

	items := l.Items()
	items[0].ID = "mutated"
	assert.Equal(t, "a", l.Items()[0].ID, "Items must return a copy")

	l.Clear()
	assert.Zero(t, l.Len())
	assert.Empty(t, l.Items())
}
