package api

import (
	"errors"
	"net/http"

	"taskden/internal/model"
	"taskden/internal/store"
)

type ProjectHandler struct {
	resolve StoreResolver
}

func NewProjectHandler(resolve StoreResolver) *ProjectHandler {
	return &ProjectHandler{resolve: resolve}
}

// /api/projects
func (h *ProjectHandler) Root(w http.ResponseWriter, r *http.Request) {
	s, err := h.resolve(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.Projects())

	case http.MethodPost:
		var in model.Project
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		created, err := s.AddProject(in)
		if err != nil {
			writeProjectErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/projects/{id}
func (h *ProjectHandler) Sub(w http.ResponseWriter, r *http.Request) {
	s, err := h.resolve(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	idStr, rest := subPath(r, "/api/projects")
	if idStr == "" || rest != "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	id := model.ProjectID(idStr)

	switch r.Method {
	case http.MethodPut:
		var in model.Project
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		in.ID = id
		updated, err := s.UpdateProject(in)
		if err != nil {
			writeProjectErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		// tasks keep living; only their projectId is cleared
		if err := s.DeleteProject(id); err != nil {
			writeProjectErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeProjectErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrProjectNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrEmptyProjectName):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}
