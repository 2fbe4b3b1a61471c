// Package prefs holds the user's alert preferences: per-category budget
// thresholds, alert toggles, and dismissed alert IDs.
//
// Preferences are an explicit value passed into the engines on every call.
// Persistence lives behind the Store interface, owned by the caller; the
// engines never write preferences themselves.
package prefs

import (
	"context"

	"spendy/internal/category"
)

// AlertSettings are the tunables gating each alert check.
type AlertSettings struct {
	BudgetWarningThreshold      float64 `json:"budgetWarningThreshold"` // percent, 0-100
	BudgetExceededEnabled       bool    `json:"budgetExceededEnabled"`
	CategorySpikesEnabled       bool    `json:"categorySpikesEnabled"`
	UnusualSpendingEnabled      bool    `json:"unusualSpendingEnabled"`
	SavingsOpportunitiesEnabled bool    `json:"savingsOpportunitiesEnabled"`
	IncomeChangesEnabled        bool    `json:"incomeChangesEnabled"`
	MinimumSpendingForAlerts    float64 `json:"minimumSpendingForAlerts"`
}

// Preferences is one user's alert configuration snapshot.
type Preferences struct {
	BudgetThresholds map[string]float64 `json:"budgetThresholds"`
	AlertSettings    AlertSettings      `json:"alertSettings"`
	DismissedAlerts  []string           `json:"dismissedAlerts"`
}

// Store persists preferences across restarts. Implementations must return a
// consistent snapshot from Load; the engines read but never write through it.
type Store interface {
	LoadPreferences(ctx context.Context) (*Preferences, error)
	SavePreferences(ctx context.Context, p *Preferences) error
}

// Defaults returns the documented default preferences.
func Defaults() *Preferences {
	return &Preferences{
		BudgetThresholds: map[string]float64{
			category.FoodDining:    300,
			category.Entertainment: 150,
			category.Shopping:      200,
			category.GroceriesCafe: 250,
			category.Transport:     100,
			category.Housing:       800,
			category.Services:      100,
			category.Other:         150,
		},
		AlertSettings: AlertSettings{
			BudgetWarningThreshold:      80,
			BudgetExceededEnabled:       true,
			CategorySpikesEnabled:       true,
			UnusualSpendingEnabled:      true,
			SavingsOpportunitiesEnabled: true,
			IncomeChangesEnabled:        true,
			MinimumSpendingForAlerts:    50,
		},
		DismissedAlerts: []string{},
	}
}

// BudgetThreshold returns the configured threshold for a category, falling
// back to the Other default for categories without an explicit threshold.
func (p *Preferences) BudgetThreshold(cat string) float64 {
	if v, ok := p.BudgetThresholds[cat]; ok && v > 0 {
		return v
	}
	if v, ok := p.BudgetThresholds[category.Other]; ok && v > 0 {
		return v
	}
	return Defaults().BudgetThresholds[category.Other]
}

// SetBudgetThreshold sets an explicit threshold for a category.
func (p *Preferences) SetBudgetThreshold(cat string, amount float64) {
	if p.BudgetThresholds == nil {
		p.BudgetThresholds = make(map[string]float64)
	}
	p.BudgetThresholds[cat] = amount
}

// IsAlertDismissed reports whether the given alert ID was dismissed.
func (p *Preferences) IsAlertDismissed(alertID string) bool {
	for _, id := range p.DismissedAlerts {
		if id == alertID {
			return true
		}
	}
	return false
}

// DismissAlert records an alert ID as dismissed. Idempotent.
func (p *Preferences) DismissAlert(alertID string) {
	if p.IsAlertDismissed(alertID) {
		return
	}
	p.DismissedAlerts = append(p.DismissedAlerts, alertID)
}

// ClearDismissedAlerts forgets every dismissal.
func (p *Preferences) ClearDismissedAlerts() {
	p.DismissedAlerts = p.DismissedAlerts[:0]
}

// ResetToDefaults restores the documented defaults in place.
func (p *Preferences) ResetToDefaults() {
	*p = *Defaults()
}

// Normalize fills zero-valued settings with their defaults. Loaded rows from
// older schema versions may miss fields; lookups must still see defaults.
func (p *Preferences) Normalize() {
	def := Defaults()
	if p.BudgetThresholds == nil {
		p.BudgetThresholds = def.BudgetThresholds
	}
	if p.AlertSettings.BudgetWarningThreshold <= 0 {
		p.AlertSettings.BudgetWarningThreshold = def.AlertSettings.BudgetWarningThreshold
	}
	if p.AlertSettings.MinimumSpendingForAlerts <= 0 {
		p.AlertSettings.MinimumSpendingForAlerts = def.AlertSettings.MinimumSpendingForAlerts
	}
	if p.DismissedAlerts == nil {
		p.DismissedAlerts = []string{}
	}
}
