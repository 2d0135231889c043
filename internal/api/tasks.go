package api

import (
	"errors"
	"net/http"

	"taskden/internal/model"
	"taskden/internal/recurrence"
	"taskden/internal/store"
)

type TaskHandler struct {
	resolve StoreResolver
}

func NewTaskHandler(resolve StoreResolver) *TaskHandler {
	return &TaskHandler{resolve: resolve}
}

// dayView groups what is due on one date: the stored tasks whose own due
// date matches, and projected instances of repeating tasks. The split is
// presentational; both sides come out of the same projection predicate.
type dayView struct {
	Tasks     []model.Task `json:"tasks"`
	Repeating []model.Task `json:"repeating"`
}

// /api/tasks  (collection)
func (h *TaskHandler) Root(w http.ResponseWriter, r *http.Request) {
	s, err := h.resolve(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if on := r.URL.Query().Get("on"); on != "" {
			target, ok := recurrence.ParseDay(on)
			if !ok {
				writeErr(w, http.StatusBadRequest, "invalid date")
				return
			}
			view := dayView{Tasks: []model.Task{}, Repeating: []model.Task{}}
			for _, t := range s.Tasks() {
				switch {
				case recurrence.IsAnchor(t, target):
					view.Tasks = append(view.Tasks, t)
				case recurrence.OccursOn(t, target):
					view.Repeating = append(view.Repeating, t)
				}
			}
			writeJSON(w, http.StatusOK, view)
			return
		}
		writeJSON(w, http.StatusOK, s.Tasks())
		return

	case http.MethodPost:
		var in model.Task
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		created, err := s.AddTask(in)
		if err != nil {
			if errors.Is(err, store.ErrEmptyTitle) {
				writeErr(w, http.StatusBadRequest, err.Error())
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, created)
		return

	case http.MethodDelete:
		// wipe everything; clients confirm with the user first
		s.DeleteAllTasks()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
}

// /api/tasks/{id} and /api/tasks/{id}/toggle
func (h *TaskHandler) Sub(w http.ResponseWriter, r *http.Request) {
	s, err := h.resolve(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	idStr, action := subPath(r, "/api/tasks")
	if idStr == "" {
		writeErr(w, http.StatusNotFound, "task id required")
		return
	}
	id := model.TaskID(idStr)

	if action == "toggle" {
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		got, err := s.ToggleTaskStatus(id)
		if err != nil {
			writeTaskErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, got)
		return
	}
	if action != "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		got, ok := s.Task(id)
		if !ok {
			writeErr(w, http.StatusNotFound, store.ErrNotFound.Error())
			return
		}
		writeJSON(w, http.StatusOK, got)

	case http.MethodPut:
		var in model.Task
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		in.ID = id
		updated, err := s.UpdateTask(in)
		if err != nil {
			writeTaskErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.DeleteTask(id); err != nil {
			writeTaskErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeTaskErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrEmptyTitle):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}
