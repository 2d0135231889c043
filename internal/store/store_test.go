package store

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskden/internal/model"
)

func strptr(s string) *string { return &s }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(NewMemoryBlobStore(), zerolog.Nop())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddTask_DefaultsAndValidation(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddTask(model.Task{Title: "   "})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	got, err := s.AddTask(model.Task{Title: "buy milk"})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, []string{}, got.Tags)
	assert.Equal(t, "", got.Category)
	assert.Equal(t, model.PriorityMedium, got.Priority)
}

func TestAddTask_ClampsZeroInterval(t *testing.T) {
	s := newTestStore(t)

	got, err := s.AddTask(model.Task{
		Title:   "stretch",
		DueDate: strptr("2024-03-01"),
		Repeat:  &model.Repeat{Type: model.RepeatDaily, Interval: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Repeat.Interval)
}

func TestUpdateTask_ReplaceByID(t *testing.T) {
	s := newTestStore(t)

	created, err := s.AddTask(model.Task{Title: "draft report"})
	require.NoError(t, err)

	created.Title = "final report"
	created.Priority = model.PriorityHigh
	updated, err := s.UpdateTask(created)
	require.NoError(t, err)
	assert.Equal(t, "final report", updated.Title)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	missing := created
	missing.ID = model.NewTaskID()
	_, err = s.UpdateTask(missing)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, s.Tasks(), 1)
}

func TestToggleTaskStatus_PlainTask(t *testing.T) {
	s := newTestStore(t)

	created, err := s.AddTask(model.Task{Title: "water plants"})
	require.NoError(t, err)

	got, err := s.ToggleTaskStatus(created.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Len(t, s.Tasks(), 1)

	got, err = s.ToggleTaskStatus(created.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestToggleTaskStatus_RecurringSpawnsNextAtomically(t *testing.T) {
	s := newTestStore(t)

	created, err := s.AddTask(model.Task{
		Title:   "daily standup notes",
		DueDate: strptr("2024-03-05"),
		Repeat:  &model.Repeat{Type: model.RepeatDaily, Interval: 1},
	})
	require.NoError(t, err)

	got, err := s.ToggleTaskStatus(created.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	tasks := s.Tasks()
	require.Len(t, tasks, 2)

	var next model.Task
	for _, task := range tasks {
		if task.ID != created.ID {
			next = task
		}
	}
	assert.Equal(t, "2024-03-06", *next.DueDate)
	assert.False(t, next.Completed)
	assert.Equal(t, created.Title, next.Title)

	// un-completing the original later must not spawn again
	_, err = s.ToggleTaskStatus(created.ID)
	require.NoError(t, err)
	assert.Len(t, s.Tasks(), 2)
}

func TestToggleTaskStatus_RecurringPastEndDate(t *testing.T) {
	s := newTestStore(t)

	created, err := s.AddTask(model.Task{
		Title:   "course homework",
		DueDate: strptr("2024-03-05"),
		Repeat:  &model.Repeat{Type: model.RepeatWeekly, Interval: 1, EndDate: strptr("2024-03-08")},
	})
	require.NoError(t, err)

	got, err := s.ToggleTaskStatus(created.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Len(t, s.Tasks(), 1, "no occurrence past endDate")
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)

	created, err := s.AddTask(model.Task{Title: "old chore"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(created.ID))
	assert.Empty(t, s.Tasks())
	assert.ErrorIs(t, s.DeleteTask(created.ID), ErrNotFound)
}

func TestDeleteAllTasks(t *testing.T) {
	s := newTestStore(t)

	for _, title := range []string{"a", "b", "c"} {
		_, err := s.AddTask(model.Task{Title: title})
		require.NoError(t, err)
	}
	s.DeleteAllTasks()
	assert.Empty(t, s.Tasks())
}

func TestDeleteProject_ClearsReferencesKeepsTasks(t *testing.T) {
	s := newTestStore(t)

	p, err := s.AddProject(model.Project{Name: "Spring cleaning", Color: "#00ff00"})
	require.NoError(t, err)
	other, err := s.AddProject(model.Project{Name: "Work"})
	require.NoError(t, err)

	inProject, err := s.AddTask(model.Task{Title: "windows", ProjectID: &p.ID})
	require.NoError(t, err)
	elsewhere, err := s.AddTask(model.Task{Title: "report", ProjectID: &other.ID})
	require.NoError(t, err)

	before := len(s.Tasks())
	require.NoError(t, s.DeleteProject(p.ID))
	assert.Len(t, s.Tasks(), before, "project delete never deletes tasks")

	got, ok := s.Task(inProject.ID)
	require.True(t, ok)
	assert.Nil(t, got.ProjectID)

	got, ok = s.Task(elsewhere.ID)
	require.True(t, ok)
	require.NotNil(t, got.ProjectID)
	assert.Equal(t, other.ID, *got.ProjectID)

	assert.ErrorIs(t, s.DeleteProject(p.ID), ErrProjectNotFound)
}

func TestCustomTags_AddIsIdempotentByError(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddCustomTag("urgent"))
	assert.ErrorIs(t, s.AddCustomTag("urgent"), ErrDuplicateTag)
	assert.ErrorIs(t, s.AddCustomTag("  "), ErrEmptyTag)
	assert.Equal(t, []string{"urgent"}, s.Prefs().CustomTags)
}

func TestDeleteCustomTag_StripsFromTasks(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddCustomTag("urgent"))
	require.NoError(t, s.AddCustomTag("home"))

	tagged, err := s.AddTask(model.Task{Title: "fix sink", Tags: []string{"urgent", "home"}})
	require.NoError(t, err)
	unrelated, err := s.AddTask(model.Task{Title: "read book", Tags: []string{"home"}})
	require.NoError(t, err)

	s.DeleteCustomTag("urgent")

	assert.Equal(t, []string{"home"}, s.Prefs().CustomTags)
	got, _ := s.Task(tagged.ID)
	assert.Equal(t, []string{"home"}, got.Tags)
	got, _ = s.Task(unrelated.ID)
	assert.Equal(t, []string{"home"}, got.Tags)
}

func TestDeleteCustomCategory_ResetsTasks(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddCustomCategory("errands"))
	assert.ErrorIs(t, s.AddCustomCategory("errands"), ErrDuplicateCategory)

	task, err := s.AddTask(model.Task{Title: "post office", Category: "errands"})
	require.NoError(t, err)
	other, err := s.AddTask(model.Task{Title: "gym", Category: "health"})
	require.NoError(t, err)

	s.DeleteCustomCategory("errands")

	assert.Empty(t, s.Prefs().CustomCategories)
	got, _ := s.Task(task.ID)
	assert.Equal(t, "", got.Category)
	got, _ = s.Task(other.ID)
	assert.Equal(t, "health", got.Category)
}

func TestToggleDarkMode(t *testing.T) {
	s := newTestStore(t)

	assert.True(t, s.ToggleDarkMode())
	assert.False(t, s.ToggleDarkMode())
}

func TestInitialize_RoundTrip(t *testing.T) {
	blobs := NewMemoryBlobStore()

	s := New(blobs, zerolog.Nop())
	// fixed wall-clock instant so CreatedAt survives the JSON round trip
	// bit-for-bit (no monotonic reading)
	s.clock = func() time.Time { return time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC) }
	due := "2024-05-01T09:30:00Z"
	_, err := s.AddTask(model.Task{
		Title:    "dentist",
		DueDate:  &due,
		Category: "health",
		Tags:     []string{"appointment"},
		Priority: model.PriorityHigh,
		Repeat:   &model.Repeat{Type: model.RepeatMonthly, Interval: 6},
	})
	require.NoError(t, err)
	_, err = s.AddProject(model.Project{Name: "Health", Color: "#ff8800"})
	require.NoError(t, err)
	require.NoError(t, s.AddCustomTag("appointment"))
	require.NoError(t, s.AddCustomCategory("health"))
	s.ToggleDarkMode()
	s.Flush()

	reloaded := New(blobs, zerolog.Nop())
	t.Cleanup(func() { _ = reloaded.Close() })
	require.NoError(t, reloaded.Initialize())

	assert.Equal(t, s.Tasks(), reloaded.Tasks())
	assert.Equal(t, s.Projects(), reloaded.Projects())
	assert.Equal(t, s.Prefs(), reloaded.Prefs())

	_ = s.Close()
}

func TestInitialize_FirstRunAndMalformedBlob(t *testing.T) {
	blobs := NewMemoryBlobStore()
	require.NoError(t, blobs.Put(BlobTasks, []byte("{not json")))

	s := New(blobs, zerolog.Nop())
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Initialize())

	assert.Empty(t, s.Tasks())
	assert.Empty(t, s.Projects())
	assert.False(t, s.Prefs().DarkMode)
}

type failingBlobStore struct{ *MemoryBlobStore }

func (f failingBlobStore) Put(key string, data []byte) error {
	return errors.New("disk full")
}

func TestPersistFailuresSurfaceOnErrs(t *testing.T) {
	s := New(failingBlobStore{NewMemoryBlobStore()}, zerolog.Nop())
	t.Cleanup(func() { _ = s.Close() })

	_, err := s.AddTask(model.Task{Title: "still added"})
	require.NoError(t, err, "in-memory transition must not fail")
	s.Flush()

	select {
	case err := <-s.Errs():
		assert.Contains(t, err.Error(), "disk full")
	case <-time.After(2 * time.Second):
		t.Fatal("expected a persistence error")
	}

	assert.Len(t, s.Tasks(), 1, "failed write never rolls back memory")
}
