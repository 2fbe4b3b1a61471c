// Package savings estimates saving capacity and produces cutback and
// pattern-based suggestions from monthly aggregates and raw transactions.
package savings

import (
	"math"

	"spendy/internal/aggregate"
	"spendy/internal/core"
)

// Capacity is the derived average surplus across the supplied months. It is
// recomputed on demand and never stored. SavingsRate is 0 when AvgIncome is
// zero so the value always serializes.
type Capacity struct {
	AvgIncome        float64            `json:"avgIncome"`
	AvgExpenses      float64            `json:"avgExpenses"`
	AvgSavings       float64            `json:"avgSavings"`
	CategoryAverages map[string]float64 `json:"categoryAverages"`
	SavingsRate      float64            `json:"savingsRate"`
}

// CalculateCapacity averages income, expenses and per-category spend over all
// months present. The caller pre-filters the window (e.g. last 3 months) when
// a shorter horizon is wanted. Category averages divide by the total month
// count: a category absent in some months counts as zero spend there, it is
// not dropped from the denominator.
func CalculateCapacity(monthly aggregate.MonthlyData) Capacity {
	monthCount := len(monthly)
	if monthCount == 0 {
		return Capacity{CategoryAverages: map[string]float64{}}
	}

	var totalIncome, totalExpenses float64
	categoryTotals := make(map[string]float64)
	for _, summary := range monthly {
		totalIncome += summary.Income
		totalExpenses += summary.Expenses
		for cat, amount := range summary.Categories {
			categoryTotals[cat] += amount
		}
	}

	avgIncome := totalIncome / float64(monthCount)
	avgExpenses := totalExpenses / float64(monthCount)
	avgSavings := avgIncome - avgExpenses

	categoryAverages := make(map[string]float64, len(categoryTotals))
	for cat, total := range categoryTotals {
		categoryAverages[cat] = total / float64(monthCount)
	}

	var savingsRate float64
	if avgIncome > 0 {
		savingsRate = avgSavings / avgIncome * 100
	}

	return Capacity{
		AvgIncome:        avgIncome,
		AvgExpenses:      avgExpenses,
		AvgSavings:       avgSavings,
		CategoryAverages: categoryAverages,
		SavingsRate:      savingsRate,
	}
}

// SuggestionPolicy carries the fixed split between conservative and
// aggressive suggestions: fractions of the available surplus, each capped at
// a fraction of average income.
type SuggestionPolicy struct {
	ConservativeSurplusShare float64
	ConservativeIncomeCap    float64
	AggressiveSurplusShare   float64
	AggressiveIncomeCap      float64
}

// DefaultPolicy is 30%/70% of surplus, capped at 10%/20% of income.
func DefaultPolicy() SuggestionPolicy {
	return SuggestionPolicy{
		ConservativeSurplusShare: 0.30,
		ConservativeIncomeCap:    0.10,
		AggressiveSurplusShare:   0.70,
		AggressiveIncomeCap:      0.20,
	}
}

// Amounts are monthly funding suggestions for a new goal, net of existing
// goal commitments. All fields are floored at zero.
type Amounts struct {
	Conservative   float64 `json:"conservative"`
	Aggressive     float64 `json:"aggressive"`
	Available      float64 `json:"available"`
	CurrentSavings float64 `json:"currentSavings"`
}

// SuggestAmount derives funding suggestions from capacity and the goals the
// user already committed to.
func SuggestAmount(capacity Capacity, currentGoals []core.SavingsGoal, policy SuggestionPolicy) Amounts {
	var existing float64
	for _, goal := range currentGoals {
		existing += goal.MonthlyAmount
	}
	available := math.Max(0, capacity.AvgSavings-existing)

	conservative := math.Min(available*policy.ConservativeSurplusShare, capacity.AvgIncome*policy.ConservativeIncomeCap)
	aggressive := math.Min(available*policy.AggressiveSurplusShare, capacity.AvgIncome*policy.AggressiveIncomeCap)

	return Amounts{
		Conservative:   math.Max(0, conservative),
		Aggressive:     math.Max(0, aggressive),
		Available:      available,
		CurrentSavings: capacity.AvgSavings,
	}
}
