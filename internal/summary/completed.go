package summary

import (
	"sort"
	"time"

	"team-tracker/internal/dates"
	"team-tracker/internal/model"
)

const DefaultRecentLimit = 3

// CompletedIn returns the completed tasks whose completion day, read in loc,
// falls inside window. Schedule dates play no part.
func CompletedIn(tasks []model.Task, window dates.Range, loc *time.Location) []model.Task {
	if loc == nil {
		loc = time.UTC
	}
	var out []model.Task
	for _, t := range model.Live(tasks) {
		if t.Status != model.StatusCompleted || t.CompletedAt == nil {
			continue
		}
		if window.Contains(dates.Of(t.CompletedAt.In(loc))) {
			out = append(out, t)
		}
	}
	return out
}

func CompletedCount(tasks []model.Task, window dates.Range, loc *time.Location) int {
	return len(CompletedIn(tasks, window, loc))
}

// RecentActivity lists the latest completions in window, newest first. A
// limit of zero or less means DefaultRecentLimit.
func RecentActivity(tasks []model.Task, window dates.Range, loc *time.Location, limit int) []model.Task {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	done := CompletedIn(tasks, window, loc)
	sort.SliceStable(done, func(i, j int) bool {
		return done[i].CompletedAt.After(*done[j].CompletedAt)
	})
	if len(done) > limit {
		done = done[:limit]
	}
	return done
}
