package summary

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"team-tracker/internal/dates"
	"team-tracker/internal/model"
	"team-tracker/internal/period"
)

// MonthBucket is one point of the monthly revenue chart.
type MonthBucket struct {
	Month  string `json:"month"`
	Amount int64  `json:"amount"`
	Points int64  `json:"points"`
	Target int64  `json:"target"`
}

// MonthlyTrend buckets completed work by completion month over the preset
// window ending with the current month. Months without a goal row have a
// zero target.
func MonthlyTrend(tasks []model.Task, goals []model.Goal, preset period.Preset, c dates.Clock) []MonthBucket {
	window := preset.Window(c)
	buckets := make([]MonthBucket, 0, preset.Months())
	index := make(map[string]int, preset.Months())
	for d := window.Start; !d.After(window.End); d = dates.New(d.Year(), d.Month()+1, 1) {
		index[d.MonthKey()] = len(buckets)
		buckets = append(buckets, MonthBucket{Month: d.MonthKey()})
	}

	for _, g := range goals {
		if i, ok := index[g.Month]; ok {
			buckets[i].Target = g.TargetAmount
		}
	}
	for _, t := range CompletedIn(tasks, window, dates.Location(c)) {
		i := index[dates.Of(t.CompletedAt.In(dates.Location(c))).MonthKey()]
		buckets[i].Amount += t.Amount
		buckets[i].Points += t.Points
	}
	return buckets
}

type Share struct {
	Member  model.Member `json:"member"`
	Amount  int64        `json:"amount"`
	Percent float64      `json:"percent"`
}

// MemberShare splits all completed revenue by member, largest first.
// Members with nothing completed are left out.
func MemberShare(members []model.Member, tasks []model.Task) []Share {
	amounts := make(map[string]int64)
	for _, t := range model.Live(tasks) {
		if t.Status == model.StatusCompleted {
			amounts[t.MemberID] += t.Amount
		}
	}

	var shares []Share
	var total int64
	for _, m := range members {
		if a := amounts[m.ID]; a > 0 {
			shares = append(shares, Share{Member: m, Amount: a})
			total += a
		}
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].Amount > shares[j].Amount })
	for i := range shares {
		shares[i].Percent = float64(shares[i].Amount) / float64(total) * 100
	}
	return shares
}

// Growth is the month-over-month change in percent, 0 when there is no
// previous value to compare with.
func Growth(current, previous int64) float64 {
	if previous <= 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

type MonthStats struct {
	Month         string  `json:"month"`
	Revenue       int64   `json:"revenue"`
	AverageAmount int64   `json:"average_amount"`
	Completed     int     `json:"completed"`
	Growth        float64 `json:"growth"`
}

// StatsFor reports the current month's completions against the month
// before.
func StatsFor(tasks []model.Task, c dates.Clock) MonthStats {
	loc := dates.Location(c)
	current := CompletedIn(tasks, period.CurrentMonth(c), loc)
	previous := CompletedIn(tasks, period.PreviousMonth(c), loc)

	stats := MonthStats{
		Month:     dates.Today(c).MonthKey(),
		Revenue:   sumAmount(current),
		Completed: len(current),
	}
	if stats.Completed > 0 {
		stats.AverageAmount = int64(math.Round(float64(stats.Revenue) / float64(stats.Completed)))
	}
	stats.Growth = Growth(stats.Revenue, sumAmount(previous))
	return stats
}

func sumAmount(tasks []model.Task) int64 {
	var n int64
	for _, t := range tasks {
		n += t.Amount
	}
	return n
}

// Insight writes a short reading of the month so far: revenue progress
// against the share of the month already elapsed, the leading member and a
// note when points are running high.
func Insight(s Summary, targets Targets, members []model.Member, c dates.Clock) string {
	today := dates.Today(c)
	elapsed := Percentage(int64(today.Day()), int64(dates.DaysInMonth(today.Year(), today.Month())))
	revenue := Percentage(s.CompletedAmount, targets.Amount)
	points := Percentage(s.CompletedPoints, targets.Points)

	var sb strings.Builder
	fmt.Fprintf(&sb, "About %d%% of %s has passed.\n\n", elapsed, today.Month())
	if revenue >= elapsed {
		fmt.Fprintf(&sb, "Revenue is at %d%% of target, ahead of the calendar. The goal looks reachable.", revenue)
	} else {
		fmt.Fprintf(&sb, "Revenue is at %d%% of target, a little behind the calendar.", revenue)
	}

	if top, ok := topMember(s); ok {
		name := top.MemberID
		for _, m := range members {
			if m.ID == top.MemberID {
				name = m.Name
				break
			}
		}
		fmt.Fprintf(&sb, "\n\n%s has completed the most revenue so far.", name)
	}
	if points > 80 {
		fmt.Fprintf(&sb, "\nPoints are at %d%% of target.", points)
	}
	return sb.String()
}

func topMember(s Summary) (MemberTotals, bool) {
	var top MemberTotals
	for _, m := range s.PerMember {
		if m.CompletedAmount > top.CompletedAmount {
			top = m
		}
	}
	return top, top.CompletedAmount > 0
}
