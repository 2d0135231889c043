package api

import (
	"errors"
	"net/http"

	"taskden/internal/store"
)

type PrefsHandler struct {
	resolve StoreResolver
}

func NewPrefsHandler(resolve StoreResolver) *PrefsHandler {
	return &PrefsHandler{resolve: resolve}
}

// GET /api/prefs
func (h *PrefsHandler) Root(w http.ResponseWriter, r *http.Request) {
	s, err := h.resolve(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.Prefs())
}

// POST /api/prefs/darkmode
func (h *PrefsHandler) DarkMode(w http.ResponseWriter, r *http.Request) {
	s, err := h.resolve(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"darkMode": s.ToggleDarkMode()})
}

type nameIn struct {
	Name string `json:"name"`
}

// /api/prefs/tags and /api/prefs/tags/{tag}
func (h *PrefsHandler) Tags(w http.ResponseWriter, r *http.Request) {
	s, err := h.resolve(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	tag, rest := subPath(r, "/api/prefs/tags")
	if rest != "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case r.Method == http.MethodPost && tag == "":
		var in nameIn
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := s.AddCustomTag(in.Name); err != nil {
			writePrefsErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true})

	case r.Method == http.MethodDelete && tag != "":
		s.DeleteCustomTag(tag)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/prefs/categories and /api/prefs/categories/{category}
func (h *PrefsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	s, err := h.resolve(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	category, rest := subPath(r, "/api/prefs/categories")
	if rest != "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case r.Method == http.MethodPost && category == "":
		var in nameIn
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := s.AddCustomCategory(in.Name); err != nil {
			writePrefsErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true})

	case r.Method == http.MethodDelete && category != "":
		s.DeleteCustomCategory(category)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writePrefsErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicateTag), errors.Is(err, store.ErrDuplicateCategory):
		writeErr(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrEmptyTag), errors.Is(err, store.ErrEmptyCategory):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}
