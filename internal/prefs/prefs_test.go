package prefs

import (
	"testing"

	"spendy/internal/category"
)

func TestDefaults(t *testing.T) {
	p := Defaults()
	if got := p.BudgetThreshold(category.Entertainment); got != 150 {
		t.Errorf("Entertainment threshold = %v, want 150", got)
	}
	if got := p.AlertSettings.BudgetWarningThreshold; got != 80 {
		t.Errorf("warning threshold = %v, want 80", got)
	}
	if got := p.AlertSettings.MinimumSpendingForAlerts; got != 50 {
		t.Errorf("minimum spending = %v, want 50", got)
	}
	if !p.AlertSettings.BudgetExceededEnabled {
		t.Error("budget exceeded should default enabled")
	}
}

// Unknown categories resolve to the Other default, never an error.
func TestBudgetThresholdFallback(t *testing.T) {
	p := Defaults()
	if got := p.BudgetThreshold(category.Fees); got != 150 {
		t.Errorf("Fees threshold = %v, want Other default 150", got)
	}
	if got := p.BudgetThreshold("Nonsense"); got != 150 {
		t.Errorf("unknown threshold = %v, want 150", got)
	}

	// Even with an empty map the documented default applies.
	empty := &Preferences{}
	if got := empty.BudgetThreshold(category.FoodDining); got != 150 {
		t.Errorf("empty prefs threshold = %v, want 150", got)
	}
}

func TestSetBudgetThreshold(t *testing.T) {
	p := &Preferences{}
	p.SetBudgetThreshold(category.Shopping, 75)
	if got := p.BudgetThreshold(category.Shopping); got != 75 {
		t.Fatalf("threshold = %v, want 75", got)
	}
}

func TestDismissedAlerts(t *testing.T) {
	p := Defaults()
	if p.IsAlertDismissed("a1") {
		t.Fatal("nothing dismissed yet")
	}
	p.DismissAlert("a1")
	p.DismissAlert("a1") // idempotent
	p.DismissAlert("a2")
	if !p.IsAlertDismissed("a1") || !p.IsAlertDismissed("a2") {
		t.Fatal("dismissals not recorded")
	}
	if len(p.DismissedAlerts) != 2 {
		t.Fatalf("expected 2 dismissals, got %d", len(p.DismissedAlerts))
	}
	p.ClearDismissedAlerts()
	if p.IsAlertDismissed("a1") {
		t.Fatal("dismissals should be cleared")
	}
}

func TestResetToDefaults(t *testing.T) {
	p := Defaults()
	p.SetBudgetThreshold(category.Transport, 999)
	p.DismissAlert("x")
	p.ResetToDefaults()
	if got := p.BudgetThreshold(category.Transport); got != 100 {
		t.Errorf("threshold after reset = %v, want 100", got)
	}
	if len(p.DismissedAlerts) != 0 {
		t.Errorf("dismissals should be empty after reset")
	}
}

func TestNormalize(t *testing.T) {
	p := &Preferences{}
	p.Normalize()
	if p.AlertSettings.BudgetWarningThreshold != 80 {
		t.Errorf("warning threshold = %v, want 80", p.AlertSettings.BudgetWarningThreshold)
	}
	if p.AlertSettings.MinimumSpendingForAlerts != 50 {
		t.Errorf("minimum spending = %v, want 50", p.AlertSettings.MinimumSpendingForAlerts)
	}
	if p.BudgetThresholds == nil || p.DismissedAlerts == nil {
		t.Error("maps and slices should be non-nil after Normalize")
	}
}
