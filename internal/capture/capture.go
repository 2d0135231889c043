// Package capture turns free text (a voice transcript, a pasted note)
// into candidate tasks. An extractor may fail or produce nothing useful;
// callers always have Fallback to lean on, so capture never loses input.
package capture

import (
	"context"
	"strings"
	"time"

	"taskden/internal/model"
)

// Fragment is a candidate task: a title plus whatever hints the extractor
// could pull out of the text.
type Fragment struct {
	Title    string         `json:"title"`
	Tags     []string       `json:"tags,omitempty"`
	Priority model.Priority `json:"priority,omitempty"`
	DueDate  string         `json:"dueDate,omitempty"`
}

type Extractor interface {
	Extract(ctx context.Context, text string) ([]Fragment, error)
}

// Fallback is the degraded path: one task whose title is the raw
// transcript, so the user's words survive even when extraction fails.
func Fallback(text string) []Fragment {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return []Fragment{{Title: text}}
}

// Task converts a fragment into a task value ready for the store.
func (f Fragment) Task() model.Task {
	t := model.Task{
		Title:    strings.TrimSpace(f.Title),
		Tags:     f.Tags,
		Priority: f.Priority,
	}
	if f.DueDate != "" {
		due := f.DueDate
		t.DueDate = &due
	}
	t.Normalize()
	return t
}

// Heuristic is a local extractor for when no language model is
// configured. One line per task; it understands "#tag", "!low/!high" and
// a few relative day words.
type Heuristic struct {
	Clock func() time.Time
}

func (h Heuristic) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

func (h Heuristic) Extract(_ context.Context, text string) ([]Fragment, error) {
	var out []Fragment
	for _, line := range strings.Split(text, "\n") {
		if f, ok := h.parseLine(line); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (h Heuristic) parseLine(line string) (Fragment, bool) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return Fragment{}, false
	}

	f := Fragment{}
	var title []string
	for _, w := range words {
		switch {
		case strings.HasPrefix(w, "#") && len(w) > 1:
			f.Tags = append(f.Tags, strings.TrimPrefix(w, "#"))
		case w == "!high":
			f.Priority = model.PriorityHigh
		case w == "!low":
			f.Priority = model.PriorityLow
		case f.DueDate == "" && h.dueWord(w) != "":
			f.DueDate = h.dueWord(w)
		default:
			title = append(title, w)
		}
	}
	f.Title = strings.Join(title, " ")
	if f.Title == "" {
		// tags/markers with no words left; keep the raw line as title
		f.Title = strings.TrimSpace(line)
	}
	return f, f.Title != ""
}

func (h Heuristic) dueWord(w string) string {
	day := time.Date(h.now().Year(), h.now().Month(), h.now().Day(), 0, 0, 0, 0, time.UTC)
	switch strings.ToLower(strings.Trim(w, ".,!?")) {
	case "today":
		return day.Format("2006-01-02")
	case "tomorrow":
		return day.AddDate(0, 0, 1).Format("2006-01-02")
	case "next-week", "nextweek":
		return day.AddDate(0, 0, 7).Format("2006-01-02")
	default:
		if _, err := time.Parse("2006-01-02", w); err == nil {
			return w
		}
		return ""
	}
}
