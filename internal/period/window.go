package period

import (
	"fmt"
	"time"

	"team-tracker/internal/dates"
)

// Month is the window covering one calendar month.
func Month(year int, month time.Month) dates.Range {
	return dates.Month(year, month)
}

// CurrentMonth is the month containing today according to c.
func CurrentMonth(c dates.Clock) dates.Range {
	today := dates.Today(c)
	return Month(today.Year(), today.Month())
}

// PreviousMonth is the month before the one containing today.
func PreviousMonth(c dates.Clock) dates.Range {
	today := dates.Today(c)
	return Month(today.Year(), today.Month()-1)
}

// TrailingMonths covers the current month and the n-1 months before it.
func TrailingMonths(c dates.Clock, n int) dates.Range {
	if n < 1 {
		n = 1
	}
	current := CurrentMonth(c)
	first := dates.New(current.Start.Year(), current.Start.Month()-time.Month(n-1), 1)
	return dates.NewRange(first, current.End)
}

// ParseMonth reads a "YYYY-MM" key into its month window.
func ParseMonth(raw string) (dates.Range, error) {
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return dates.Range{}, fmt.Errorf("parse month %q: %w", raw, err)
	}
	return Month(t.Year(), t.Month()), nil
}

// Preset is one of the analytics time-range toggles.
type Preset string

const (
	SixMonths Preset = "6months"
	Year      Preset = "year"
	AllTime   Preset = "all"
)

func ParsePreset(raw string) (Preset, error) {
	switch p := Preset(raw); p {
	case SixMonths, Year, AllTime:
		return p, nil
	case "":
		return SixMonths, nil
	default:
		return "", fmt.Errorf("unknown range %q", raw)
	}
}

// Months is the number of month buckets the preset shows. "All time" is
// capped at two years.
func (p Preset) Months() int {
	switch p {
	case Year:
		return 12
	case AllTime:
		return 24
	default:
		return 6
	}
}

func (p Preset) Window(c dates.Clock) dates.Range {
	return TrailingMonths(c, p.Months())
}
