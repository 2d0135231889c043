package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"taskden/internal/capture"
	"taskden/internal/model"
)

type CaptureHandler struct {
	resolve   StoreResolver
	extractor capture.Extractor
	logger    zerolog.Logger
}

func NewCaptureHandler(resolve StoreResolver, extractor capture.Extractor, logger zerolog.Logger) *CaptureHandler {
	return &CaptureHandler{resolve: resolve, extractor: extractor, logger: logger}
}

// POST /api/capture
//
// Extraction failures never fail the request: the transcript becomes one
// plain task instead.
func (h *CaptureHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s, err := h.resolve(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	var in struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		writeErr(w, http.StatusBadRequest, "text is required")
		return
	}

	usedFallback := false
	frags, err := h.extractor.Extract(r.Context(), in.Text)
	if err != nil || len(frags) == 0 {
		if err != nil {
			h.logger.Warn().Err(err).Msg("task extraction failed, falling back to raw transcript")
		}
		frags = capture.Fallback(in.Text)
		usedFallback = true
	}

	created := make([]model.Task, 0, len(frags))
	for _, f := range frags {
		task, err := s.AddTask(f.Task())
		if err != nil {
			continue // skip fragments the store rejects, keep the rest
		}
		created = append(created, task)
	}
	if len(created) == 0 {
		writeErr(w, http.StatusBadRequest, "nothing usable in transcript")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"tasks":    created,
		"fallback": usedFallback,
	})
}
