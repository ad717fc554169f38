// Package period decides which tasks belong to a reporting window. A task
// belongs to a window when its day range intersects it; which exact days it
// occupies does not matter here.
package period

import (
	"team-tracker/internal/dates"
	"team-tracker/internal/model"
)

// Entry is a live task that can be placed on a calendar, together with its
// normalized day range. Entries only come out of Schedule, so a deleted or
// undated task never reaches layout code.
type Entry struct {
	task model.Task
	span dates.Range
}

func (e Entry) Task() model.Task  { return e.task }
func (e Entry) Span() dates.Range { return e.span }

// Schedule normalizes tasks into entries, skipping soft-deleted records and
// records without a usable date range. Input order is kept.
func Schedule(tasks []model.Task) []Entry {
	live := model.Live(tasks)
	out := make([]Entry, 0, len(live))
	for _, t := range live {
		span, ok := t.Span()
		if !ok {
			continue
		}
		out = append(out, Entry{task: t, span: span})
	}
	return out
}

// Overlapping keeps the entries whose span intersects w.
func Overlapping(entries []Entry, w dates.Range) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.span.Overlaps(w) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByWindow returns the non-deleted tasks whose span overlaps w, in
// input order.
func FilterByWindow(tasks []model.Task, w dates.Range) []model.Task {
	entries := Overlapping(Schedule(tasks), w)
	out := make([]model.Task, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.task)
	}
	return out
}
