package handler

import (
	"log/slog"
	"net/http"

	"github.com/marcodive/divesite/internal/gallery"
)

// GalleryHandler serves the cached dive video gallery.
type GalleryHandler struct {
	cache  *gallery.Cache
	logger *slog.Logger
}

func NewGalleryHandler(cache *gallery.Cache, logger *slog.Logger) *GalleryHandler {
	return &GalleryHandler{cache: cache, logger: logger}
}

// HandleList returns the gallery videos.
//
//	GET /api/gallery
func (h *GalleryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	videos, err := h.cache.Videos(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}
