// Package aggregate groups transactions into per-month income, expense and
// category totals.
package aggregate

import (
	"sort"
	"time"

	"spendy/internal/category"
	"spendy/internal/core"
)

// monthKeyLayout renders keys like "June 2025".
const monthKeyLayout = "January 2006"

type (
	// MonthKey identifies a calendar month, e.g. "June 2025". Keys are not
	// ordered lexicographically: use SortedKeys before relying on order.
	MonthKey string

	// MonthSummary holds accumulated totals for one month. Income and
	// expenses are absolute values; categories are populated for debits
	// only, so their sum never exceeds expenses.
	MonthSummary struct {
		Income     float64
		Expenses   float64
		Categories map[string]float64
	}

	// MonthlyData maps month keys to their summaries. It is built fresh per
	// aggregation run and never patched afterwards: recompute instead.
	MonthlyData map[MonthKey]*MonthSummary
)

// NewMonthKey derives the key for a transaction date.
func NewMonthKey(t time.Time) MonthKey {
	return MonthKey(t.Format(monthKeyLayout))
}

// Time parses the key back into the first instant of its month.
func (k MonthKey) Time() (time.Time, error) {
	return time.Parse(monthKeyLayout, string(k))
}

// Aggregate builds MonthlyData from a transaction list. Transactions with a
// zero date are silently skipped; this leniency is deliberate, bad rows are
// excluded rather than failing the whole run. The input is never mutated.
func Aggregate(transactions []core.Transaction) MonthlyData {
	monthly := make(MonthlyData)
	for _, tx := range transactions {
		if tx.Date.IsZero() {
			continue
		}
		key := NewMonthKey(tx.Date)
		summary, ok := monthly[key]
		if !ok {
			summary = &MonthSummary{Categories: make(map[string]float64)}
			monthly[key] = summary
		}

		if tx.IsDebit() {
			amount := tx.Amount
			if amount < 0 {
				amount = -amount
			}
			summary.Expenses += amount
			summary.Categories[category.Categorize(tx.Description)] += amount
		} else {
			summary.Income += tx.Amount
		}
	}
	return monthly
}

// SortedKeys returns the month keys in chronological order. Keys that fail to
// parse sort first; they only arise from hand-built fixtures.
func (m MonthlyData) SortedKeys() []MonthKey {
	keys := make([]MonthKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ti, erri := keys[i].Time()
		tj, errj := keys[j].Time()
		if erri != nil || errj != nil {
			return erri != nil && errj == nil
		}
		return ti.Before(tj)
	})
	return keys
}

// Latest returns the chronologically last month key, or "" when empty.
func (m MonthlyData) Latest() MonthKey {
	keys := m.SortedKeys()
	if len(keys) == 0 {
		return ""
	}
	return keys[len(keys)-1]
}

// Previous returns the second-to-last month key, or "" when there is no
// previous month.
func (m MonthlyData) Previous() MonthKey {
	keys := m.SortedKeys()
	if len(keys) < 2 {
		return ""
	}
	return keys[len(keys)-2]
}

// AverageExpenses is the mean of expenses across all months, zero when empty.
func (m MonthlyData) AverageExpenses() float64 {
	if len(m) == 0 {
		return 0
	}
	var total float64
	for _, summary := range m {
		total += summary.Expenses
	}
	return total / float64(len(m))
}
