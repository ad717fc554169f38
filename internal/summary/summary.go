// Package summary aggregates amounts and points over a reporting window.
//
// Two filters live here and they answer different questions. Summarize
// looks at tasks scheduled in the window (date overlap), while CompletedIn
// and everything built on it looks at when tasks were actually completed.
package summary

import (
	"sort"

	"team-tracker/internal/dates"
	"team-tracker/internal/model"
	"team-tracker/internal/period"
)

// Totals splits amounts and points into completed and still pending work.
type Totals struct {
	CompletedAmount int64 `json:"completed_amount"`
	PendingAmount   int64 `json:"pending_amount"`
	CompletedPoints int64 `json:"completed_points"`
	PendingPoints   int64 `json:"pending_points"`
}

func (t *Totals) add(task model.Task) {
	switch task.Status {
	case model.StatusCompleted:
		t.CompletedAmount += task.Amount
		t.CompletedPoints += task.Points
	case model.StatusPending:
		t.PendingAmount += task.Amount
		t.PendingPoints += task.Points
	}
}

// ForecastAmount is what the window reaches if every pending task closes.
func (t Totals) ForecastAmount() int64 { return t.CompletedAmount + t.PendingAmount }
func (t Totals) ForecastPoints() int64 { return t.CompletedPoints + t.PendingPoints }

type MemberTotals struct {
	MemberID string `json:"member_id"`
	Totals
}

type Summary struct {
	Window dates.Range `json:"window"`
	Totals
	PerMember []MemberTotals `json:"per_member"`
}

// Member returns the totals of one member, zero if the member has no tasks
// in the window.
func (s Summary) Member(id string) Totals {
	for _, m := range s.PerMember {
		if m.MemberID == id {
			return m.Totals
		}
	}
	return Totals{}
}

// Summarize totals the tasks scheduled in window. Cancelled tasks count
// toward neither side, deleted and undated tasks are not considered.
func Summarize(tasks []model.Task, window dates.Range) Summary {
	s := Summary{Window: window}
	byMember := make(map[string]*Totals)
	for _, t := range period.FilterByWindow(tasks, window) {
		s.Totals.add(t)
		mt, ok := byMember[t.MemberID]
		if !ok {
			mt = &Totals{}
			byMember[t.MemberID] = mt
		}
		mt.add(t)
	}

	s.PerMember = make([]MemberTotals, 0, len(byMember))
	for id, mt := range byMember {
		s.PerMember = append(s.PerMember, MemberTotals{MemberID: id, Totals: *mt})
	}
	sort.Slice(s.PerMember, func(i, j int) bool {
		return s.PerMember[i].MemberID < s.PerMember[j].MemberID
	})
	return s
}
