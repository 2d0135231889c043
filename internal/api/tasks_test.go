package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskden/internal/model"
	"taskden/internal/store"
)

func newTestStore(t *testing.T) (*store.Store, StoreResolver) {
	t.Helper()
	s := store.New(store.NewMemoryBlobStore(), zerolog.Nop())
	t.Cleanup(func() { _ = s.Close() })
	resolve := func(*http.Request) (*store.Store, error) { return s, nil }
	return s, resolve
}

func doJSON(t *testing.T, h http.HandlerFunc, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestTaskHandler_CreateAndList(t *testing.T) {
	_, resolve := newTestStore(t)
	h := NewTaskHandler(resolve)

	w := doJSON(t, h.Root, http.MethodPost, "/api/tasks", model.Task{Title: "water plants"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody[model.Task](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.PriorityMedium, created.Priority)

	w = doJSON(t, h.Root, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decodeBody[[]model.Task](t, w)
	require.Len(t, tasks, 1)
	assert.Equal(t, "water plants", tasks[0].Title)
}

func TestTaskHandler_CreateRejectsEmptyTitle(t *testing.T) {
	_, resolve := newTestStore(t)
	h := NewTaskHandler(resolve)

	w := doJSON(t, h.Root, http.MethodPost, "/api/tasks", model.Task{Title: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_DayView(t *testing.T) {
	s, resolve := newTestStore(t)
	h := NewTaskHandler(resolve)

	due := "2024-03-05"
	_, err := s.AddTask(model.Task{Title: "one-off", DueDate: &due})
	require.NoError(t, err)

	anchor := "2024-03-01"
	_, err = s.AddTask(model.Task{
		Title:   "stand-up",
		DueDate: &anchor,
		Repeat:  &model.Repeat{Type: model.RepeatDaily, Interval: 2},
	})
	require.NoError(t, err)

	w := doJSON(t, h.Root, http.MethodGet, "/api/tasks?on=2024-03-05", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeBody[struct {
		Tasks     []model.Task `json:"tasks"`
		Repeating []model.Task `json:"repeating"`
	}](t, w)
	require.Len(t, view.Tasks, 1)
	assert.Equal(t, "one-off", view.Tasks[0].Title)
	require.Len(t, view.Repeating, 1)
	assert.Equal(t, "stand-up", view.Repeating[0].Title)

	w = doJSON(t, h.Root, http.MethodGet, "/api/tasks?on=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_ToggleAndDelete(t *testing.T) {
	s, resolve := newTestStore(t)
	h := NewTaskHandler(resolve)

	created, err := s.AddTask(model.Task{Title: "inbox zero"})
	require.NoError(t, err)

	w := doJSON(t, h.Sub, http.MethodPost, "/api/tasks/"+string(created.ID)+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	toggled := decodeBody[model.Task](t, w)
	assert.True(t, toggled.Completed)

	w = doJSON(t, h.Sub, http.MethodDelete, "/api/tasks/"+string(created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h.Sub, http.MethodDelete, "/api/tasks/"+string(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_UpdateUnknownTask(t *testing.T) {
	_, resolve := newTestStore(t)
	h := NewTaskHandler(resolve)

	w := doJSON(t, h.Sub, http.MethodPut, "/api/tasks/task_missing", model.Task{Title: "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_DeleteAll(t *testing.T) {
	s, resolve := newTestStore(t)
	h := NewTaskHandler(resolve)

	for _, title := range []string{"a", "b", "c"} {
		_, err := s.AddTask(model.Task{Title: title})
		require.NoError(t, err)
	}

	w := doJSON(t, h.Root, http.MethodDelete, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, s.Tasks())
}
