// Package recurrence projects repeating tasks onto calendar dates.
//
// Everything here is a pure function over task values. Unparseable dates
// answer "does not occur" instead of failing, because these predicates run
// on every list render.
package recurrence

import (
	"time"

	"taskden/internal/model"
)

const dayLayout = "2006-01-02"

// ParseDay accepts a bare date or a full RFC 3339 timestamp and reduces it
// to midnight UTC of that calendar day.
func ParseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// OccursOn reports whether an occurrence of t falls on target.
//
// The anchor is the task's own due date: nothing occurs before it, and if
// the rule has an end date nothing occurs after that. Day granularity
// throughout.
func OccursOn(t model.Task, target time.Time) bool {
	if !t.Repeat.Active() || t.DueDate == nil {
		return false
	}
	anchor, ok := ParseDay(*t.DueDate)
	if !ok {
		return false
	}
	on := day(target)
	if on.Before(anchor) {
		return false
	}
	if t.Repeat.EndDate != nil {
		if end, ok := ParseDay(*t.Repeat.EndDate); ok && on.After(end) {
			return false
		}
	}

	interval := t.Repeat.EffectiveInterval()
	daysSince := int(on.Sub(anchor).Hours() / 24)

	switch t.Repeat.Type {
	case model.RepeatDaily:
		return daysSince%interval == 0
	case model.RepeatWeekly:
		if on.Weekday() != anchor.Weekday() {
			return false
		}
		return (daysSince/7)%interval == 0
	case model.RepeatMonthly:
		months := (on.Year()*12 + int(on.Month())) - (anchor.Year()*12 + int(anchor.Month()))
		if months%interval != 0 {
			return false
		}
		want := anchor.Day()
		if last := lastDayOfMonth(on.Year(), on.Month()); want > last {
			want = last
		}
		return on.Day() == want
	default:
		return false
	}
}

// IsAnchor reports whether target is the task's own stored due date rather
// than a projected repeat. Presentation-only distinction; OccursOn does not
// care.
func IsAnchor(t model.Task, target time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	anchor, ok := ParseDay(*t.DueDate)
	if !ok {
		return false
	}
	return anchor.Equal(day(target))
}

// NextOccurrence builds the follow-up instance created when a repeating
// task is completed. The next due date chains off the due date of the
// instance being completed, not the original anchor. Monthly steps clamp
// to the last valid day of the target month.
//
// Returns false when the task does not repeat, its due date is unusable,
// or the computed date would pass the rule's end date. The caller owns the
// atomic pair: mark the source complete and append the returned task in
// the same state transition.
func NextOccurrence(t model.Task, now time.Time) (model.Task, bool) {
	if !t.Repeat.Active() || t.DueDate == nil {
		return model.Task{}, false
	}
	cur, ok := ParseDay(*t.DueDate)
	if !ok {
		return model.Task{}, false
	}

	interval := t.Repeat.EffectiveInterval()
	var next time.Time
	switch t.Repeat.Type {
	case model.RepeatDaily:
		next = cur.AddDate(0, 0, interval)
	case model.RepeatWeekly:
		next = cur.AddDate(0, 0, 7*interval)
	case model.RepeatMonthly:
		next = addMonthsClamped(cur, interval)
	default:
		return model.Task{}, false
	}

	if t.Repeat.EndDate != nil {
		if end, ok := ParseDay(*t.Repeat.EndDate); ok && next.After(end) {
			return model.Task{}, false
		}
	}

	out := t.Clone()
	out.ID = model.NewTaskID()
	out.Completed = false
	out.CreatedAt = now
	due := next.Format(dayLayout)
	out.DueDate = &due
	return out, true
}

// addMonthsClamped avoids time.AddDate's overflow (Jan 31 + 1 month ->
// Mar 2/3); a due day past the end of the target month lands on its last
// day instead.
func addMonthsClamped(t time.Time, months int) time.Time {
	year := t.Year()
	month := int(t.Month()) + months
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	dayOfMonth := t.Day()
	if last := lastDayOfMonth(first.Year(), first.Month()); dayOfMonth > last {
		dayOfMonth = last
	}
	return time.Date(first.Year(), first.Month(), dayOfMonth, 0, 0, 0, 0, time.UTC)
}
