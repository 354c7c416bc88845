package feed

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/marcodive/divesite/internal/model"
)

func newTestBroker(t *testing.T) *Broker {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	b := NewBroker(logger)
	t.Cleanup(b.Close)
	return b
}

func recvOne(t *testing.T, ch <-chan model.Review) model.Review {
	t.Helper()
	select {
	case r, ok := <-ch:
		if !ok {
			t.Fatal("subscriber channel closed unexpectedly")
		}
		return r
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for feed event")
	}
	return model.Review{}
}

func TestPublish_DeliversToAllSubscribers(t *testing.T) {
	b := newTestBroker(t)

	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish(model.Review{ID: "r1", Content: "hello"})

	if got := recvOne(t, ch1); got.ID != "r1" {
		t.Errorf("subscriber 1 got %q, want r1", got.ID)
	}
	if got := recvOne(t, ch2); got.ID != "r1" {
		t.Errorf("subscriber 2 got %q, want r1", got.ID)
	}
}

func TestPublish_PreservesOrderPerSubscriber(t *testing.T) {
	b := newTestBroker(t)

	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(model.Review{ID: "r1"})
	b.Publish(model.Review{ID: "r2"})
	b.Publish(model.Review{ID: "r3"})

	for _, want := range []string{"r1", "r2", "r3"} {
		if got := recvOne(t, ch); got.ID != want {
			t.Errorf("got %q, want %q", got.ID, want)
		}
	}
}

func TestCancel_StopsDelivery(t *testing.T) {
	b := newTestBroker(t)

	ch, cancel := b.Subscribe()
	cancel()

	// Channel must be closed so range loops terminate.
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}

	// Publishing after cancel must not panic.
	b.Publish(model.Review{ID: "r1"})
}

func TestCancel_Idempotent(t *testing.T) {
	b := newTestBroker(t)

	_, cancel := b.Subscribe()
	cancel()
	cancel() // second call is a no-op, not a double-close panic
}

// A subscriber that never reads gets events dropped, and the publisher
// never blocks.
func TestPublish_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := newTestBroker(t)

	_, cancel := b.Subscribe() // never read from
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*3; i++ {
			b.Publish(model.Review{ID: "r"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestClose_ClosesSubscribers(t *testing.T) {
	b := newTestBroker(t)

	ch, _ := b.Subscribe()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after broker Close")
	}

	// Subscribing after close yields an already-closed channel.
	ch2, cancel2 := b.Subscribe()
	defer cancel2()
	if _, ok := <-ch2; ok {
		t.Error("expected closed channel when subscribing after Close")
	}
}
