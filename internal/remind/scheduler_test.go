package remind

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	fired []Notification
	ch    chan Notification
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{ch: make(chan Notification, 8)}
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	r.fired = append(r.fired, n)
	r.mu.Unlock()
	r.ch <- n
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

func TestSchedule_Fires(t *testing.T) {
	n := newRecordingNotifier()
	s := NewScheduler(n)
	defer s.Stop()

	_, err := s.Schedule(Notification{
		ID:     "rem_1",
		Title:  "stand up",
		FireAt: time.Now().Add(10 * time.Millisecond),
	})
	require.NoError(t, err)

	select {
	case got := <-n.ch:
		assert.Equal(t, "rem_1", got.ID)
		assert.Equal(t, "stand up", got.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("reminder never fired")
	}
	assert.Equal(t, 0, s.Pending())
}

func TestSchedule_PastFiresImmediately(t *testing.T) {
	n := newRecordingNotifier()
	s := NewScheduler(n)
	defer s.Stop()

	_, err := s.Schedule(Notification{
		ID:     "rem_late",
		Title:  "overdue",
		FireAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	select {
	case <-n.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("past reminder should fire immediately")
	}
}

func TestCancel_PreventsDelivery(t *testing.T) {
	n := newRecordingNotifier()
	s := NewScheduler(n)
	defer s.Stop()

	h, err := s.Schedule(Notification{
		ID:     "rem_2",
		Title:  "never",
		FireAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Pending())

	h.Cancel()
	assert.Equal(t, 0, s.Pending())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, n.count())
}

func TestSchedule_ReplacesSameID(t *testing.T) {
	n := newRecordingNotifier()
	s := NewScheduler(n)
	defer s.Stop()

	_, err := s.Schedule(Notification{ID: "rem_3", Title: "v1", FireAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	_, err = s.Schedule(Notification{ID: "rem_3", Title: "v2", FireAt: time.Now().Add(10 * time.Millisecond)})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Pending())

	select {
	case got := <-n.ch:
		assert.Equal(t, "v2", got.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("replacement reminder never fired")
	}
	assert.Equal(t, 1, n.count(), "only the replacement fires")
}

func TestSchedule_RequiresID(t *testing.T) {
	s := NewScheduler(newRecordingNotifier())
	defer s.Stop()

	_, err := s.Schedule(Notification{Title: "anonymous"})
	assert.ErrorIs(t, err, ErrEmptyID)
}
