package savings

import (
	"math"

	"spendy/internal/aggregate"
	"spendy/internal/core"
)

// onTrackShare is the fraction of the linearly expected amount a goal must
// reach to count as on track.
const onTrackShare = 0.9

// GoalProgress is the derived completion state for one savings goal.
type GoalProgress struct {
	Percentage   float64 `json:"percentage"`
	MonthsToGoal int     `json:"monthsToGoal"`
	OnTrack      bool    `json:"onTrack"`
	Shortfall    float64 `json:"shortfall"`
}

// CalculateGoalProgress measures a goal against the months of data available.
// Months elapsed is at least 1 so a brand-new dataset still yields a sane
// expectation. MonthsToGoal is 0 for a completed goal and -1 when the goal
// has no positive monthly amount (unreachable by contributions).
func CalculateGoalProgress(goal core.SavingsGoal, monthly aggregate.MonthlyData) GoalProgress {
	monthsElapsed := len(monthly)
	if monthsElapsed < 1 {
		monthsElapsed = 1
	}

	expectedProgress := goal.MonthlyAmount * float64(monthsElapsed)
	actual := goal.CurrentAmount

	var percentage float64
	if goal.TargetAmount > 0 {
		percentage = math.Min(100, actual/goal.TargetAmount*100)
	}

	remaining := goal.TargetAmount - actual
	monthsToGoal := 0
	switch {
	case remaining <= 0:
		monthsToGoal = 0
	case goal.MonthlyAmount <= 0:
		monthsToGoal = -1
	default:
		monthsToGoal = int(math.Ceil(remaining / goal.MonthlyAmount))
	}

	return GoalProgress{
		Percentage:   percentage,
		MonthsToGoal: monthsToGoal,
		OnTrack:      actual >= expectedProgress*onTrackShare,
		Shortfall:    math.Max(0, expectedProgress-actual),
	}
}
