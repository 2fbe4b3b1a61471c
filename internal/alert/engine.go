package alert

import (
	"fmt"
	"math"
	"sort"
	"time"

	"spendy/internal/aggregate"
	"spendy/internal/core"
	"spendy/internal/prefs"
)

// Fixed rule thresholds. Percentages are relative changes.
const (
	categorySpikeIncreasePct = 50
	unusualSpendingAbovePct  = 25
	unusualSpendingFloor     = 1000
	lowSavingsRatePct        = 10
	incomeDropPct            = -20
)

// Engine evaluates one snapshot of monthly data against preferences.
// It is pure per call: preferences are re-read by the caller on every run,
// never cached across runs.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects the timestamp source, for reproducible output in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate runs every enabled check and returns alerts sorted by severity,
// highest first, preserving emission order between equal severities.
//
// Each check guards its own preconditions: a missing previous month, empty
// categories or a zero denominator contribute no alerts instead of failing
// the whole pass.
func (e *Engine) Generate(monthly aggregate.MonthlyData, transactions []core.Transaction, p *prefs.Preferences) []Alert {
	if p == nil {
		p = prefs.Defaults()
	}

	var alerts []Alert
	ts := e.now().UTC().Format(time.RFC3339)
	add := func(a Alert) {
		a.Timestamp = ts
		alerts = append(alerts, a)
	}

	currentKey := monthly.Latest()
	if currentKey == "" {
		return alerts
	}
	current := monthly[currentKey]
	var previous *aggregate.MonthSummary
	if prevKey := monthly.Previous(); prevKey != "" {
		previous = monthly[prevKey]
	}

	e.checkBudgets(currentKey, current, p, add)
	e.checkCategorySpikes(currentKey, current, previous, p, add)
	e.checkUnusualSpending(currentKey, current, monthly, p, add)
	e.checkSavingsOpportunity(currentKey, current, p, add)
	e.checkIncomeDrop(currentKey, current, previous, p, add)

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Weight() > alerts[j].Severity.Weight()
	})
	return alerts
}

func (e *Engine) checkBudgets(month aggregate.MonthKey, current *aggregate.MonthSummary, p *prefs.Preferences, add func(Alert)) {
	if !p.AlertSettings.BudgetExceededEnabled {
		return
	}
	for _, cat := range sortedCategories(current.Categories) {
		spent := current.Categories[cat]
		budget := p.BudgetThreshold(cat)
		if budget <= 0 {
			continue
		}
		percentage := spent / budget * 100

		switch {
		case percentage >= 100:
			add(Alert{
				ID:       alertID(TypeBudgetExceeded, cat, month),
				Type:     TypeBudgetExceeded,
				Severity: SeverityCritical,
				Title:    fmt.Sprintf("%s Budget Exceeded!", cat),
				Message: fmt.Sprintf("You've spent %s on %s this month, which is %.0f%% of your %s budget.",
					core.FormatEUR(spent), cat, percentage, core.FormatEUR(budget)),
				Category:  cat,
				Value:     spent,
				Threshold: budget,
				Details:   map[string]string{"percentage": fmt.Sprintf("%.1f", percentage)},
			})
		case percentage >= p.AlertSettings.BudgetWarningThreshold:
			add(Alert{
				ID:       alertID(TypeBudgetWarning, cat, month),
				Type:     TypeBudgetWarning,
				Severity: SeverityHigh,
				Title:    fmt.Sprintf("%s Budget Alert", cat),
				Message: fmt.Sprintf("You've spent %.0f%% of your %s budget this month (%s of %s).",
					percentage, cat, core.FormatEUR(spent), core.FormatEUR(budget)),
				Category:  cat,
				Value:     spent,
				Threshold: budget,
				Details:   map[string]string{"percentage": fmt.Sprintf("%.1f", percentage)},
			})
		}
	}
}

func (e *Engine) checkCategorySpikes(month aggregate.MonthKey, current, previous *aggregate.MonthSummary, p *prefs.Preferences, add func(Alert)) {
	if previous == nil || !p.AlertSettings.CategorySpikesEnabled {
		return
	}
	minSpending := p.AlertSettings.MinimumSpendingForAlerts

	for _, cat := range sortedCategories(current.Categories) {
		currentSpent := current.Categories[cat]
		previousSpent := previous.Categories[cat]
		if previousSpent <= 0 || currentSpent <= minSpending {
			continue
		}
		increase := (currentSpent - previousSpent) / previousSpent * 100
		if increase > categorySpikeIncreasePct {
			add(Alert{
				ID:       alertID(TypeCategorySpike, cat, month),
				Type:     TypeCategorySpike,
				Severity: SeverityMedium,
				Title:    fmt.Sprintf("%s Spending Spike", cat),
				Message: fmt.Sprintf("Your %s spending increased by %.0f%% compared to last month (%s vs %s).",
					cat, increase, core.FormatEUR(currentSpent), core.FormatEUR(previousSpent)),
				Category: cat,
				Value:    currentSpent,
				Details: map[string]string{
					"previousValue": fmt.Sprintf("%.2f", previousSpent),
					"increase":      fmt.Sprintf("%.1f", increase),
				},
			})
		}
	}
}

func (e *Engine) checkUnusualSpending(month aggregate.MonthKey, current *aggregate.MonthSummary, monthly aggregate.MonthlyData, p *prefs.Preferences, add func(Alert)) {
	if !p.AlertSettings.UnusualSpendingEnabled {
		return
	}
	totalSpent := current.Expenses
	avgSpending := monthly.AverageExpenses()
	if avgSpending <= 0 {
		return
	}
	difference := (totalSpent - avgSpending) / avgSpending * 100
	if difference > unusualSpendingAbovePct && totalSpent > unusualSpendingFloor {
		add(Alert{
			ID:       alertID(TypeUnusualSpending, "", month),
			Type:     TypeUnusualSpending,
			Severity: SeverityMedium,
			Title:    "Unusual Spending Pattern",
			Message: fmt.Sprintf("Your total spending this month (%s) is %.0f%% higher than your average (%s).",
				core.FormatEUR(totalSpent), difference, core.FormatEUR(avgSpending)),
			Value: totalSpent,
			Details: map[string]string{
				"average":    fmt.Sprintf("%.2f", avgSpending),
				"difference": fmt.Sprintf("%.1f", difference),
			},
		})
	}
}

func (e *Engine) checkSavingsOpportunity(month aggregate.MonthKey, current *aggregate.MonthSummary, p *prefs.Preferences, add func(Alert)) {
	if !p.AlertSettings.SavingsOpportunitiesEnabled {
		return
	}
	income := current.Income
	if income <= 0 {
		return
	}
	savingsRate := (income - current.Expenses) / income * 100
	if savingsRate >= lowSavingsRatePct {
		return
	}
	add(Alert{
		ID:       alertID(TypeSavingsOpportunity, "", month),
		Type:     TypeSavingsOpportunity,
		Severity: SeverityLow,
		Title:    "Low Savings Rate",
		Message: fmt.Sprintf("You're only saving %.1f%% of your income this month. Consider reviewing your expenses to increase savings.",
			savingsRate),
		Details: map[string]string{
			"savingsRate": fmt.Sprintf("%.1f", savingsRate),
			"income":      fmt.Sprintf("%.2f", income),
			"expenses":    fmt.Sprintf("%.2f", current.Expenses),
		},
	})
}

func (e *Engine) checkIncomeDrop(month aggregate.MonthKey, current, previous *aggregate.MonthSummary, p *prefs.Preferences, add func(Alert)) {
	if previous == nil || !p.AlertSettings.IncomeChangesEnabled {
		return
	}
	if previous.Income <= 0 || current.Income <= 0 {
		return
	}
	change := (current.Income - previous.Income) / previous.Income * 100
	if change < incomeDropPct {
		add(Alert{
			ID:       alertID(TypeIncomeDrop, "", month),
			Type:     TypeIncomeDrop,
			Severity: SeverityHigh,
			Title:    "Income Decrease Alert",
			Message: fmt.Sprintf("Your income decreased by %.0f%% compared to last month (%s vs %s).",
				math.Abs(change), core.FormatEUR(current.Income), core.FormatEUR(previous.Income)),
			Value: current.Income,
			Details: map[string]string{
				"previousValue": fmt.Sprintf("%.2f", previous.Income),
				"change":        fmt.Sprintf("%.1f", change),
			},
		})
	}
}

// sortedCategories walks map keys in a fixed order so generation runs are
// reproducible.
func sortedCategories(categories map[string]float64) []string {
	keys := make([]string, 0, len(categories))
	for k := range categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
