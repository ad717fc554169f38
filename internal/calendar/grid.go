// Package calendar composes the month view: a day axis against a member
// axis, with each member's tasks drawn as bars positioned by the lane
// engine.
package calendar

import (
	"time"

	"team-tracker/internal/dates"
	"team-tracker/internal/lanes"
	"team-tracker/internal/model"
	"team-tracker/internal/period"
)

const (
	DefaultRowHeight = 48
	DefaultLaneWidth = 96
)

// Options tune a grid build. Zero values fall back to defaults.
type Options struct {
	Clock    dates.Clock
	Holidays dates.HolidayFunc

	// MemberID restricts the member axis to a single member.
	MemberID string

	RowHeight int
	LaneWidth int

	// ColumnWidth caps a member column; lanes shrink to fit. Zero means
	// unbounded.
	ColumnWidth int
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = dates.SystemClock(time.Local)
	}
	if o.Holidays == nil {
		o.Holidays = dates.HolidayName
	}
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultRowHeight
	}
	if o.LaneWidth <= 0 {
		o.LaneWidth = DefaultLaneWidth
	}
	return o
}

type Day struct {
	Date    dates.Date   `json:"date"`
	Weekday time.Weekday `json:"weekday"`
	Today   bool         `json:"today"`
	Weekend bool         `json:"weekend"`
	Holiday string       `json:"holiday,omitempty"`
}

// Bar is one task drawn in a member column.
type Bar struct {
	Task         model.Task `json:"task"`
	Lane         int        `json:"lane"`
	StartRow     int        `json:"start_row"`
	RowSpan      int        `json:"row_span"`
	Top          int        `json:"top"`
	Height       int        `json:"height"`
	Offset       int        `json:"offset"`
	Width        int        `json:"width"`
	ClippedStart bool       `json:"clipped_start"`
	ClippedEnd   bool       `json:"clipped_end"`

	// CompleteRow is the row holding the completion control, -1 when the
	// control is not shown in this view.
	CompleteRow int `json:"complete_row"`
}

// CompletableOn reports whether the completion control is live on day d.
// The control sits on the task's last day only.
func (b Bar) CompletableOn(d dates.Date) bool {
	if b.CompleteRow < 0 || b.Task.Status != model.StatusPending {
		return false
	}
	span, ok := b.Task.Span()
	return ok && span.End.Equal(d)
}

type Column struct {
	Member     model.Member `json:"member"`
	Foreground string       `json:"foreground"`
	Lanes      int          `json:"lanes"`
	LaneWidth  int          `json:"lane_width"`
	Bars       []Bar        `json:"bars"`
}

type Grid struct {
	Window    dates.Range `json:"window"`
	RowHeight int         `json:"row_height"`
	Days      []Day       `json:"days"`
	Columns   []Column    `json:"columns"`
}

// Build lays out tasks for the members over window. Tasks owned by members
// that are not on the axis are left out, as are deleted and undated tasks.
func Build(window dates.Range, members []model.Member, tasks []model.Task, opts Options) Grid {
	opts = opts.withDefaults()

	grid := Grid{Window: window, RowHeight: opts.RowHeight}
	for _, d := range window.Days() {
		holiday, _ := opts.Holidays(d)
		grid.Days = append(grid.Days, Day{
			Date:    d,
			Weekday: d.Weekday(),
			Today:   dates.IsToday(opts.Clock, d),
			Weekend: d.IsWeekend(),
			Holiday: holiday,
		})
	}

	byMember := make(map[string][]period.Entry)
	for _, e := range period.Overlapping(period.Schedule(tasks), window) {
		id := e.Task().MemberID
		byMember[id] = append(byMember[id], e)
	}

	for _, m := range members {
		if opts.MemberID != "" && m.ID != opts.MemberID {
			continue
		}
		grid.Columns = append(grid.Columns, buildColumn(m, byMember[m.ID], window, opts))
	}
	return grid
}

func buildColumn(m model.Member, entries []period.Entry, window dates.Range, opts Options) Column {
	placements := lanes.Assign(entries, window)
	count := lanes.Count(placements)

	laneWidth := opts.LaneWidth
	if opts.ColumnWidth > 0 && count > 0 && count*laneWidth > opts.ColumnWidth {
		laneWidth = opts.ColumnWidth / count
		if laneWidth < 1 {
			laneWidth = 1
		}
	}

	col := Column{
		Member:     m,
		Foreground: ContrastColor(m.Color),
		Lanes:      count,
		LaneWidth:  laneWidth,
		Bars:       make([]Bar, 0, len(placements)),
	}
	for _, p := range placements {
		bar := Bar{
			Task:         p.Entry.Task(),
			Lane:         p.Lane,
			StartRow:     p.StartRow,
			RowSpan:      p.RowSpan,
			Top:          p.StartRow * opts.RowHeight,
			Height:       p.RowSpan * opts.RowHeight,
			Offset:       p.Lane * laneWidth,
			Width:        laneWidth,
			ClippedStart: p.ClippedStart,
			ClippedEnd:   p.ClippedEnd,
			CompleteRow:  -1,
		}
		if !p.ClippedEnd {
			bar.CompleteRow = p.StartRow + p.RowSpan - 1
		}
		col.Bars = append(col.Bars, bar)
	}
	return col
}

// Row returns the row index of d, or -1 when d is outside the grid.
func (g Grid) Row(d dates.Date) int {
	if !g.Window.Contains(d) {
		return -1
	}
	return g.Window.Start.DaysUntil(d)
}

// Column returns the column of a member.
func (g Grid) Column(memberID string) (Column, bool) {
	for _, c := range g.Columns {
		if c.Member.ID == memberID {
			return c, true
		}
	}
	return Column{}, false
}

// Bar finds the bar drawn for a task.
func (g Grid) Bar(taskID string) (Bar, bool) {
	for _, c := range g.Columns {
		for _, b := range c.Bars {
			if b.Task.ID == taskID {
				return b, true
			}
		}
	}
	return Bar{}, false
}

// BarsOn lists the bars of a member that cover row.
func (c Column) BarsOn(row int) []Bar {
	var out []Bar
	for _, b := range c.Bars {
		if row >= b.StartRow && row < b.StartRow+b.RowSpan {
			out = append(out, b)
		}
	}
	return out
}
