// Package lanes lays out one member's date-ranged tasks as non-overlapping
// horizontal bars. Lanes are a per-view rendering artifact: they are never
// stored and are recomputed from scratch whenever the visible set changes.
package lanes

import (
	"sort"

	"team-tracker/internal/dates"
	"team-tracker/internal/period"
)

// Placement is where one task sits in the visible grid.
type Placement struct {
	Entry period.Entry

	// Lane is zero-based and unbounded.
	Lane int

	// StartRow and RowSpan index the visible days, after clamping the task to
	// the visible range.
	StartRow int
	RowSpan  int

	// ClippedStart and ClippedEnd mark tasks that continue past the view.
	ClippedStart bool
	ClippedEnd   bool
}

// Assign gives every entry that intersects visible the lowest lane not
// held by a task placed before it that shares one of its days. Tasks are
// placed by start date, longer first on ties. Lanes are computed from each
// task's true span so a task running past the edge of the view keeps its
// lane relative to other tasks that do the same. Entries outside visible are
// ignored. Placements are returned in placement order.
//
// Assignment is order dependent: the only promise is that two tasks sharing a
// day never share a lane.
func Assign(entries []period.Entry, visible dates.Range) []Placement {
	sorted := make([]period.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Span().Overlaps(visible) {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Span(), sorted[j].Span()
		if c := a.Start.Compare(b.Start); c != 0 {
			return c < 0
		}
		if c := a.End.Compare(b.End); c != 0 {
			return c > 0
		}
		return sorted[i].Task().ID < sorted[j].Task().ID
	})

	out := make([]Placement, 0, len(sorted))
	for _, e := range sorted {
		span := e.Span()
		lane := firstFree(out, span)

		shown, _ := span.Clamp(visible)
		out = append(out, Placement{
			Entry:        e,
			Lane:         lane,
			StartRow:     visible.Start.DaysUntil(shown.Start),
			RowSpan:      shown.Len(),
			ClippedStart: span.Start.Before(visible.Start),
			ClippedEnd:   span.End.After(visible.End),
		})
	}
	return out
}

// Count is the number of lanes the placements need.
func Count(placements []Placement) int {
	n := 0
	for _, p := range placements {
		if p.Lane+1 > n {
			n = p.Lane + 1
		}
	}
	return n
}

// firstFree is the lowest lane not held by a placed task sharing a day with
// span. Only placed tasks can conflict, so the cost does not depend on how
// many days span covers.
func firstFree(placed []Placement, span dates.Range) int {
	used := make(map[int]bool)
	for _, p := range placed {
		if p.Entry.Span().Overlaps(span) {
			used[p.Lane] = true
		}
	}
	lane := 0
	for used[lane] {
		lane++
	}
	return lane
}
