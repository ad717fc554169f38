package summary

import (
	"math"

	"team-tracker/internal/model"
)

// Percentage is value as a share of target, clamped to 100 and then
// rounded. A zero target gives 0.
func Percentage(value, target int64) int {
	if target <= 0 {
		return 0
	}
	ratio := math.Min(float64(value)/float64(target), 1)
	return int(math.Round(ratio * 100))
}

type Targets struct {
	Amount int64 `json:"amount"`
	Points int64 `json:"points"`
}

// TargetsFor reads a month's goal, falling back to the default targets for
// a missing goal or unset fields.
func TargetsFor(goal *model.Goal) Targets {
	t := Targets{Amount: model.DefaultTargetAmount, Points: model.DefaultTargetPoints}
	if goal == nil {
		return t
	}
	if goal.TargetAmount > 0 {
		t.Amount = goal.TargetAmount
	}
	if goal.TargetPoints > 0 {
		t.Points = goal.TargetPoints
	}
	return t
}

// Progress is what the dashboard meters show: the completed share of each
// target and the share reached once pending work is included.
type Progress struct {
	Amount         int `json:"amount"`
	AmountForecast int `json:"amount_forecast"`
	Points         int `json:"points"`
	PointsForecast int `json:"points_forecast"`
}

func ProgressOf(t Totals, targets Targets) Progress {
	return Progress{
		Amount:         Percentage(t.CompletedAmount, targets.Amount),
		AmountForecast: Percentage(t.ForecastAmount(), targets.Amount),
		Points:         Percentage(t.CompletedPoints, targets.Points),
		PointsForecast: Percentage(t.ForecastPoints(), targets.Points),
	}
}
