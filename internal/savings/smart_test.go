package savings

import (
	"testing"
	"time"

	"spendy/internal/core"
)

func debitAt(t time.Time, desc string, amount float64) core.Transaction {
	return core.Transaction{Date: t, Description: desc, Amount: amount, Type: core.Debit}
}

func TestSmartSuggestionsFrequentSmallPurchases(t *testing.T) {
	day := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC) // a Monday
	txs := []core.Transaction{
		debitAt(day, "Starbucks", -4.50),
		debitAt(day.AddDate(0, 0, 1), "starbucks", -5.00),
		debitAt(day.AddDate(0, 0, 2), "STARBUCKS", -4.00),
	}

	suggestions := GenerateSmartSuggestions(nil, txs)

	var frequency *SmartSuggestion
	for i := range suggestions {
		if suggestions[i].Type == "frequency" {
			frequency = &suggestions[i]
		}
	}
	if frequency == nil {
		t.Fatalf("expected frequency suggestion, got %+v", suggestions)
	}
	// 13.50 total * 0.3
	if got, want := frequency.PotentialSavings, 13.5*0.3; got != want {
		t.Errorf("PotentialSavings = %v, want %v", got, want)
	}
}

func TestSmartSuggestionsGroupingIgnoresTwoPurchases(t *testing.T) {
	day := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		debitAt(day, "Local Deli", -6),
		debitAt(day.AddDate(0, 0, 1), "Local Deli", -7),
	}
	for _, s := range GenerateSmartSuggestions(nil, txs) {
		if s.Type == "frequency" {
			t.Fatalf("two purchases must not trigger the frequency pattern: %+v", s)
		}
	}
}

func TestSmartSuggestionsLargeAveragesExcluded(t *testing.T) {
	day := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		debitAt(day, "Tech Store", -100),
		debitAt(day.AddDate(0, 0, 1), "Tech Store", -120),
		debitAt(day.AddDate(0, 0, 2), "Tech Store", -90),
	}
	for _, s := range GenerateSmartSuggestions(nil, txs) {
		if s.Type == "frequency" {
			t.Fatalf("average over 25 must not trigger the frequency pattern: %+v", s)
		}
	}
}

func TestSmartSuggestionsWeekendPremium(t *testing.T) {
	monday := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		debitAt(monday, "weekday lunch", -30),
		debitAt(monday.AddDate(0, 0, 1), "weekday lunch", -30),
		debitAt(saturday, "weekend dinner", -60),
		debitAt(sunday, "weekend brunch", -60),
	}

	suggestions := GenerateSmartSuggestions(nil, txs)

	var timing *SmartSuggestion
	for i := range suggestions {
		if suggestions[i].Title == "Reduce weekend premium spending" {
			timing = &suggestions[i]
		}
	}
	if timing == nil {
		t.Fatalf("expected weekend premium suggestion, got %+v", suggestions)
	}
	// excess = (60-30) * 2 weekend purchases = 60; savings = 60 * 0.4
	if got, want := timing.PotentialSavings, 60*0.4; got != want {
		t.Errorf("PotentialSavings = %v, want %v", got, want)
	}
}

func TestSmartSuggestionsLateNight(t *testing.T) {
	lateNight := time.Date(2025, 6, 3, 23, 30, 0, 0, time.UTC)
	earlyMorning := time.Date(2025, 6, 4, 2, 0, 0, 0, time.UTC)
	afternoon := time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		debitAt(lateNight, "online shop", -40),
		debitAt(earlyMorning, "online shop 2", -10),
		debitAt(afternoon, "groceries", -30),
	}

	suggestions := GenerateSmartSuggestions(nil, txs)

	var lateNightSuggestion *SmartSuggestion
	for i := range suggestions {
		if suggestions[i].Title == "Avoid late-night impulse purchases" {
			lateNightSuggestion = &suggestions[i]
		}
	}
	if lateNightSuggestion == nil {
		t.Fatalf("expected late-night suggestion, got %+v", suggestions)
	}
	// 50 late-night total * 0.6
	if got, want := lateNightSuggestion.PotentialSavings, 50*0.6; got != want {
		t.Errorf("PotentialSavings = %v, want %v", got, want)
	}
}

func TestSmartSuggestionsSortedBySavings(t *testing.T) {
	day := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC) // late night Monday
	txs := []core.Transaction{
		debitAt(day, "kiosk", -5),
		debitAt(day.AddDate(0, 0, 1), "kiosk", -5),
		debitAt(day.AddDate(0, 0, 2), "kiosk", -5),
	}
	suggestions := GenerateSmartSuggestions(nil, txs)
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].PotentialSavings > suggestions[i-1].PotentialSavings {
			t.Fatalf("suggestions not sorted at %d: %+v", i, suggestions)
		}
	}
}

func TestSmartSuggestionsCreditsIgnored(t *testing.T) {
	day := time.Date(2025, 6, 7, 23, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		{Date: day, Description: "payroll", Amount: 2000, Type: core.Credit},
	}
	if got := GenerateSmartSuggestions(nil, txs); len(got) != 0 {
		t.Fatalf("credits alone should produce no suggestions, got %+v", got)
	}
}
