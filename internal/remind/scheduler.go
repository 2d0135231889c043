// Package remind schedules local reminder notifications. It is the
// in-process stand-in for an OS notification service: callers hand over
// (id, title, body, fireAt) and get a cancellable handle back. The task
// store knows nothing about it.
package remind

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrEmptyID = errors.New("reminder id is required")

type Notification struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Body   string    `json:"body,omitempty"`
	FireAt time.Time `json:"fireAt"`
}

// Notifier receives due notifications. Delivery is at-most-once and
// best-effort; a reminder cancelled before its timer fires is never
// delivered.
type Notifier interface {
	Notify(n Notification)
}

type LogNotifier struct {
	Logger zerolog.Logger
}

func (l LogNotifier) Notify(n Notification) {
	l.Logger.Info().
		Str("reminder_id", n.ID).
		Str("title", n.Title).
		Time("fire_at", n.FireAt).
		Msg("reminder_fired")
}

type Handle struct {
	id string
	s  *Scheduler
}

func (h *Handle) ID() string { return h.id }

func (h *Handle) Cancel() {
	h.s.cancel(h.id)
}

type Scheduler struct {
	mu       sync.Mutex
	notifier Notifier
	timers   map[string]*time.Timer
	clock    func() time.Time
}

func NewScheduler(notifier Notifier) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		timers:   map[string]*time.Timer{},
		clock:    time.Now,
	}
}

// Schedule arms a timer for the notification. Re-scheduling an id
// replaces its pending reminder. A fire time in the past fires
// immediately rather than erroring, matching how mobile notification
// APIs behave.
func (s *Scheduler) Schedule(n Notification) (*Handle, error) {
	if n.ID == "" {
		return nil, ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[n.ID]; ok {
		old.Stop()
	}

	delay := n.FireAt.Sub(s.clock())
	if delay < 0 {
		delay = 0
	}
	id := n.ID
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		s.notifier.Notify(n)
	})

	return &Handle{id: id, s: s}, nil
}

// Pending reports how many reminders are armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Cancel drops the pending reminder with the given id, if any.
func (s *Scheduler) Cancel(id string) {
	s.cancel(id)
}

// Stop cancels everything; used at shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
