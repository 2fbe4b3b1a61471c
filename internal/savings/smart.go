package savings

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"spendy/internal/category"
	"spendy/internal/core"
)

// Smart suggestion thresholds.
const (
	frequentMinCount      = 3
	frequentMaxAvg        = 25
	frequentSavingsShare  = 0.3
	weekendPremiumPct     = 20
	weekendSavingsShare   = 0.4
	lateNightSavingsShare = 0.6
)

// SmartSuggestion is a pattern-derived recommendation, distinct from flat
// percentage cutbacks.
type SmartSuggestion struct {
	Type             string   `json:"type"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	PotentialSavings float64  `json:"potentialSavings"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	ActionItems      []string `json:"actionItems"`
}

type merchantGroup struct {
	count    int
	total    float64
	category string
}

type spendingPatterns struct {
	frequentSmallPurchases []frequentPurchase
	weekendPremium         float64
	weekendExcess          float64
	lateNightSpending      float64
}

type frequentPurchase struct {
	description  string
	frequency    int
	avgAmount    float64
	monthlyTotal float64
	category     string
}

// GenerateSmartSuggestions inspects raw transactions for three patterns:
// frequent small purchases, a weekend premium over weekday spending, and
// late-night spending. Sorted by potential savings descending.
func GenerateSmartSuggestions(categoryAverages map[string]float64, transactions []core.Transaction) []SmartSuggestion {
	patterns := analyzeSpendingPatterns(transactions)
	var suggestions []SmartSuggestion

	for _, p := range patterns.frequentSmallPurchases {
		suggestions = append(suggestions, SmartSuggestion{
			Type:  "frequency",
			Title: fmt.Sprintf("Reduce %s purchases", p.description),
			Description: fmt.Sprintf("You make %d small purchases averaging %s",
				p.frequency, core.FormatEUR(p.avgAmount)),
			PotentialSavings: p.monthlyTotal * frequentSavingsShare,
			Difficulty:       "Easy",
			Category:         p.category,
			ActionItems: []string{
				"Set a weekly budget for small purchases",
				"Use a spending tracker app",
				"Consider bulk buying",
			},
		})
	}

	if patterns.weekendPremium > weekendPremiumPct {
		suggestions = append(suggestions, SmartSuggestion{
			Type:  "timing",
			Title: "Reduce weekend premium spending",
			Description: fmt.Sprintf("You spend %.0f%% more on weekends",
				patterns.weekendPremium),
			PotentialSavings: patterns.weekendExcess * weekendSavingsShare,
			Difficulty:       "Medium",
			Category:         category.Entertainment,
			ActionItems: []string{
				"Plan weekend activities in advance",
				"Set a weekend spending limit",
				"Find free weekend activities",
			},
		})
	}

	if patterns.lateNightSpending > 0 {
		suggestions = append(suggestions, SmartSuggestion{
			Type:  "timing",
			Title: "Avoid late-night impulse purchases",
			Description: fmt.Sprintf("Late-night purchases account for %s monthly",
				core.FormatEUR(patterns.lateNightSpending)),
			PotentialSavings: patterns.lateNightSpending * lateNightSavingsShare,
			Difficulty:       "Easy",
			Category:         category.Shopping,
			ActionItems: []string{
				"Use shopping cart delay features",
				"Set phone spending limits after 9 PM",
				"Create a wish list instead of buying immediately",
			},
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].PotentialSavings > suggestions[j].PotentialSavings
	})
	return suggestions
}

func analyzeSpendingPatterns(transactions []core.Transaction) spendingPatterns {
	merchants := make(map[string]*merchantGroup)
	var weekdayTotal, weekendTotal, lateNightTotal float64
	var weekdayCount, weekendCount int

	for _, tx := range transactions {
		if !tx.IsDebit() {
			continue
		}
		amount := math.Abs(tx.Amount)
		hour := tx.Date.Hour()
		weekday := tx.Date.Weekday()
		isWeekend := weekday == time.Saturday || weekday == time.Sunday

		merchant := strings.ToLower(tx.Description)
		group, ok := merchants[merchant]
		if !ok {
			group = &merchantGroup{category: category.Categorize(tx.Description)}
			merchants[merchant] = group
		}
		group.count++
		group.total += amount

		if isWeekend {
			weekendTotal += amount
			weekendCount++
		} else {
			weekdayTotal += amount
			weekdayCount++
		}

		// 21:00 through 02:59 counts as late night.
		if hour >= 21 || hour <= 2 {
			lateNightTotal += amount
		}
	}

	patterns := spendingPatterns{lateNightSpending: lateNightTotal}

	for _, merchant := range sortedMerchantKeys(merchants) {
		group := merchants[merchant]
		if group.count < frequentMinCount {
			continue
		}
		avg := group.total / float64(group.count)
		if avg >= frequentMaxAvg {
			continue
		}
		patterns.frequentSmallPurchases = append(patterns.frequentSmallPurchases, frequentPurchase{
			description:  merchant,
			frequency:    group.count,
			avgAmount:    avg,
			monthlyTotal: group.total,
			category:     group.category,
		})
	}

	var avgWeekday, avgWeekend float64
	if weekdayCount > 0 {
		avgWeekday = weekdayTotal / float64(weekdayCount)
	}
	if weekendCount > 0 {
		avgWeekend = weekendTotal / float64(weekendCount)
	}
	if avgWeekday > 0 {
		patterns.weekendPremium = (avgWeekend - avgWeekday) / avgWeekday * 100
		patterns.weekendExcess = math.Max(0, avgWeekend-avgWeekday) * float64(weekendCount)
	}

	return patterns
}

func sortedMerchantKeys(m map[string]*merchantGroup) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
