package dates

import "time"

// Range is a closed interval of days: both Start and End are included.
type Range struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

func NewRange(start, end Date) Range {
	return Range{Start: start, End: end}
}

// Single is the one-day range [d, d].
func Single(d Date) Range {
	return Range{Start: d, End: d}
}

// Month returns the range covering every day of the given month.
func Month(year int, month time.Month) Range {
	first := New(year, month, 1)
	return Range{Start: first, End: New(year, month+1, 0)}
}

func DaysInMonth(year int, month time.Month) int {
	return New(year, month+1, 0).Day()
}

// Valid reports whether both bounds are set and End is not before Start.
func (r Range) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start)
}

func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r Range) Overlaps(o Range) bool {
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

// Clamp trims r to the bounds of o. The second result is false when the
// ranges do not overlap.
func (r Range) Clamp(o Range) (Range, bool) {
	if !r.Overlaps(o) {
		return Range{}, false
	}
	out := r
	if out.Start.Before(o.Start) {
		out.Start = o.Start
	}
	if out.End.After(o.End) {
		out.End = o.End
	}
	return out, true
}

// Len is the number of days in r, 0 for an invalid range.
func (r Range) Len() int {
	if !r.Valid() {
		return 0
	}
	return r.Start.DaysUntil(r.End) + 1
}

func (r Range) Days() []Date {
	n := r.Len()
	out := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.Start.AddDays(i))
	}
	return out
}

func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}
