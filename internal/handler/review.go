package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/marcodive/divesite/internal/auth"
	"github.com/marcodive/divesite/internal/feed"
	"github.com/marcodive/divesite/internal/service"
)

// heartbeatInterval keeps idle SSE connections alive through proxies that
// time out quiet streams.
const heartbeatInterval = 25 * time.Second

// ReviewHandler serves the review list, submission, and live feed.
type ReviewHandler struct {
	service *service.ReviewService
	broker  *feed.Broker
	logger  *slog.Logger
}

func NewReviewHandler(svc *service.ReviewService, broker *feed.Broker, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, broker: broker, logger: logger}
}

// HandleList returns every review, newest first.
//
//	GET /api/reviews
func (h *ReviewHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// HandleCreate submits a review for the signed-in user.
//
//	POST /api/reviews  {"stars": 4, "content": "..."}
func (h *ReviewHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// RequireAuth should make this unreachable; belt and braces.
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "sign in to continue"})
		return
	}

	var input service.CreateReviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	review, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, review)
}

// HandleFeed streams review inserts as Server-Sent Events.
//
//	GET /api/reviews/feed
//
// Each insert arrives as an "insert" event whose data is the review JSON.
// The stream ends when the client disconnects or the server shuts down.
func (h *ReviewHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := h.broker.Subscribe()
	defer cancel()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case review, open := <-events:
			if !open {
				// Broker closed: server shutdown.
				return
			}
			data, err := json.Marshal(review)
			if err != nil {
				h.logger.Error("feed: marshaling review", slog.String("error", err.Error()))
				continue
			}
			fmt.Fprintf(w, "event: insert\ndata: %s\n\n", data)
			flusher.Flush()

		case <-heartbeat.C:
			// SSE comment line; clients ignore it.
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
