// Package api exposes the task store over JSON HTTP. Handlers resolve
// their store per request so the same code serves every authenticated
// user.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"taskden/internal/store"
)

// StoreResolver picks the store for a request, normally keyed by the
// authenticated user injected upstream.
type StoreResolver func(*http.Request) (*store.Store, error)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// subPath splits the remainder after prefix into at most two segments,
// e.g. /api/tasks/task_1/toggle -> ("task_1", "toggle").
func subPath(r *http.Request, prefix string) (string, string) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if rest == "" {
		return "", ""
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
