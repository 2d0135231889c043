package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskID string

type ProjectID string

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type RepeatType string

const (
	RepeatNone    RepeatType = "none"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
)

// Repeat describes a recurrence rule anchored on the task's due date.
// Interval below 1 is treated as 1 everywhere.
type Repeat struct {
	Type     RepeatType `json:"type"`
	Interval int        `json:"interval"`
	EndDate  *string    `json:"endDate,omitempty"`
}

// Active reports whether the rule actually produces occurrences.
func (r *Repeat) Active() bool {
	return r != nil && r.Type != "" && r.Type != RepeatNone
}

// EffectiveInterval clamps a zero/negative interval to 1.
func (r *Repeat) EffectiveInterval() int {
	if r == nil || r.Interval < 1 {
		return 1
	}
	return r.Interval
}

type Task struct {
	ID          TaskID     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *string    `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Priority    Priority   `json:"priority"`
	Repeat      *Repeat    `json:"repeat,omitempty"`
	ProjectID   *ProjectID `json:"projectId,omitempty"`
}

type Project struct {
	ID          ProjectID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"` // Hex color for display
	CreatedAt   time.Time `json:"createdAt"`
}

func NewTaskID() TaskID {
	return TaskID("task_" + uuid.NewString())
}

func NewProjectID() ProjectID {
	return ProjectID("proj_" + uuid.NewString())
}

// Normalize fills the defaults a freshly decoded or user-supplied task may
// be missing. It never rejects; validation lives at the store boundary.
func (t *Task) Normalize() {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		t.Priority = PriorityMedium
	}
	if t.Repeat != nil {
		if t.Repeat.Type == "" || t.Repeat.Type == RepeatNone {
			t.Repeat = nil
		} else if t.Repeat.Interval < 1 {
			t.Repeat.Interval = 1
		}
	}
	if t.DueDate != nil && *t.DueDate == "" {
		t.DueDate = nil
	}
	if t.ProjectID != nil && *t.ProjectID == "" {
		t.ProjectID = nil
	}
}

// Clone returns a deep copy so store snapshots cannot be mutated by callers.
func (t Task) Clone() Task {
	out := t
	if t.Tags != nil {
		out.Tags = append([]string{}, t.Tags...)
	}
	if t.Repeat != nil {
		r := *t.Repeat
		if t.Repeat.EndDate != nil {
			end := *t.Repeat.EndDate
			r.EndDate = &end
		}
		out.Repeat = &r
	}
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.ProjectID != nil {
		pid := *t.ProjectID
		out.ProjectID = &pid
	}
	return out
}

func (t *Task) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}
