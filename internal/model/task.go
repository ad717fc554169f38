package model

import (
	"time"

	"team-tracker/internal/dates"
)

// Task is a unit of revenue-bearing work owned by exactly one member.
type Task struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Title    string `json:"title"`
	Amount   int64  `json:"amount"`
	Points   int64  `json:"points"`
	MemberID string `gorm:"index" json:"member_id"`
	Status   Status `gorm:"index;default:pending" json:"status"`

	StartDate *dates.Date `gorm:"index" json:"start_date,omitempty"`
	EndDate   *dates.Date `gorm:"index" json:"end_date,omitempty"`

	// ScheduledDate is the single-day field of records written before tasks
	// had ranges.
	ScheduledDate *dates.Date `json:"scheduled_date,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Span returns the inclusive day range the task occupies. Both start and end
// win over the legacy scheduled date. The second result is false when the
// task cannot be placed on a calendar: no usable dates, or an end before the
// start.
func (t Task) Span() (dates.Range, bool) {
	var r dates.Range
	switch {
	case t.StartDate != nil && t.EndDate != nil && !t.StartDate.IsZero() && !t.EndDate.IsZero():
		r = dates.NewRange(*t.StartDate, *t.EndDate)
	case t.ScheduledDate != nil && !t.ScheduledDate.IsZero():
		r = dates.Single(*t.ScheduledDate)
	default:
		return dates.Range{}, false
	}
	if !r.Valid() {
		return dates.Range{}, false
	}
	return r, true
}

// Occupies reports whether the task covers day d.
func (t Task) Occupies(d dates.Date) bool {
	r, ok := t.Span()
	return ok && r.Contains(d)
}
