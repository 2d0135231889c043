package api

import (
	"errors"
	"net/http"
	"time"

	"taskden/internal/auth"
	"taskden/internal/remind"
)

type ReminderHandler struct {
	scheduler *remind.Scheduler
}

func NewReminderHandler(scheduler *remind.Scheduler) *ReminderHandler {
	return &ReminderHandler{scheduler: scheduler}
}

// reminder ids are namespaced per user so one user cannot cancel
// another's timers
func scopedID(r *http.Request, id string) string {
	if u, ok := auth.UserFromContext(r.Context()); ok {
		return u.ID + ":" + id
	}
	return id
}

// POST /api/reminders
func (h *ReminderHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var in struct {
		ID     string    `json:"id"`
		Title  string    `json:"title"`
		Body   string    `json:"body"`
		FireAt time.Time `json:"fireAt"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if in.FireAt.IsZero() {
		writeErr(w, http.StatusBadRequest, "fireAt is required")
		return
	}

	// the handle stays server-side; DELETE with the same id cancels
	_, err := h.scheduler.Schedule(remind.Notification{
		ID:     scopedID(r, in.ID),
		Title:  in.Title,
		Body:   in.Body,
		FireAt: in.FireAt,
	})
	if err != nil {
		if errors.Is(err, remind.ErrEmptyID) {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok": true,
		"id": in.ID,
	})
}

// DELETE /api/reminders/{id}
func (h *ReminderHandler) Sub(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, rest := subPath(r, "/api/reminders")
	if id == "" || rest != "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	h.scheduler.Cancel(scopedID(r, id))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
