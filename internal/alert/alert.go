// Package alert turns monthly aggregates and preferences into ranked
// financial alerts.
package alert

import (
	"fmt"

	"spendy/internal/aggregate"
)

// Alert types.
const (
	TypeBudgetWarning      = "budget_warning"
	TypeBudgetExceeded     = "budget_exceeded"
	TypeUnusualSpending    = "unusual_spending"
	TypeCategorySpike      = "category_spike"
	TypeIncomeDrop         = "income_drop"
	TypeSavingsOpportunity = "savings_opportunity"
)

// Severity ranks alerts for sorting and display.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight maps severities onto an ordinal scale: CRITICAL=4 .. LOW=1.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Alert is one generated insight. Alerts are ephemeral: they are recomputed
// on every generation run and never persisted by the engine. Dismissal state
// lives in preferences, keyed by ID.
type Alert struct {
	ID        string            `json:"id"`
	Timestamp string            `json:"timestamp"`
	Type      string            `json:"type"`
	Severity  Severity          `json:"severity"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Category  string            `json:"category,omitempty"`
	Value     float64           `json:"value,omitempty"`
	Threshold float64           `json:"threshold,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// alertID derives a stable identifier from alert content, so dismissals
// survive regeneration. Category is empty for month-level alerts.
func alertID(alertType, category string, month aggregate.MonthKey) string {
	if category == "" {
		return fmt.Sprintf("%s:%s", alertType, month)
	}
	return fmt.Sprintf("%s:%s:%s", alertType, category, month)
}
