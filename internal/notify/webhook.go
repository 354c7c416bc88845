// Package notify posts a small "new review" notification to an external
// webhook after a successful insert.
//
// This is strictly best-effort: the review is already durably stored by
// the time the webhook fires, so a webhook failure is logged and otherwise
// invisible — it never surfaces to the submitter and never rolls anything
// back. The call runs as a detached task with its own deadline, which
// makes that independence structural rather than a try/catch convention.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Payload is the webhook body.
type Payload struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Stars   int    `json:"stars"`
}

// Webhook is a bearer-token-authenticated notification client.
//
// A circuit breaker wraps the call: when the receiving end is down, we
// stop hammering it and fail instantly until it recovers. Nobody waits on
// these calls, but each one still holds a goroutine and a connection.
type Webhook struct {
	url     string
	token   string
	timeout time.Duration
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewWebhook creates a Webhook client. timeout bounds each delivery
// attempt end to end.
func NewWebhook(url, token string, timeout time.Duration, logger *slog.Logger) *Webhook {
	settings := gobreaker.Settings{
		Name:     "review-webhook",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("webhook circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &Webhook{
		url:     url,
		token:   token,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
		logger:  logger,
	}
}

// Send delivers one notification synchronously. Exposed for tests and for
// callers that want the error; production paths use SendAsync.
func (w *Webhook) Send(ctx context.Context, p Payload) error {
	_, err := w.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, w.post(ctx, p)
	})
	return err
}

// SendAsync fires the notification on a detached goroutine with its own
// deadline — deliberately not the caller's context, which is cancelled as
// soon as the submit response is written. Failures are logged only.
func (w *Webhook) SendAsync(p Payload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		if err := w.Send(ctx, p); err != nil {
			w.logger.Warn("review webhook notification failed",
				slog.String("name", p.Name),
				slog.String("error", err.Error()),
			)
		}
	}()
}

func (w *Webhook) post(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("notify: marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: posting webhook: %w", err)
	}
	defer resp.Body.Close()

	// The response body is ignored beyond the status line.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify: webhook returned status %d", resp.StatusCode)
	}

	return nil
}
