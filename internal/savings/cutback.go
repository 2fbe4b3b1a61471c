package savings

import (
	"sort"

	"spendy/internal/category"
)

// flexibleCategory describes how much of a category can realistically be cut.
type flexibleCategory struct {
	maxReduction float64
	difficulty   string
	tips         []string
}

// Only these categories get cutback proposals. Housing, fees and transfers
// are treated as fixed.
var flexibleCategories = map[string]flexibleCategory{
	category.FoodDining: {0.25, "Easy", []string{
		"Cook more meals at home",
		"Reduce takeout frequency",
		"Use meal planning",
	}},
	category.Entertainment: {0.30, "Easy", []string{
		"Find free activities",
		"Use streaming services instead of cinema",
		"Look for discounts",
	}},
	category.Shopping: {0.40, "Medium", []string{
		"Create a shopping list",
		"Wait 24 hours before purchases",
		"Compare prices online",
	}},
	category.GroceriesCafe: {0.15, "Easy", []string{
		"Buy generic brands",
		"Use coupons",
		"Avoid impulse buys",
	}},
	category.Transport: {0.20, "Medium", []string{
		"Use public transport",
		"Walk or bike when possible",
		"Carpool",
	}},
}

// cutbackMinimumMonthly is the spend floor below which a category is not
// worth suggesting cuts for.
const cutbackMinimumMonthly = 50

// reduction steps offered per category, before the category maximum.
var reductionSteps = []float64{0.10, 0.15, 0.20}

// CutbackSuggestion proposes reducing one flexible category by a percentage.
type CutbackSuggestion struct {
	Category            string   `json:"category"`
	CurrentAmount       float64  `json:"currentAmount"`
	ReductionPercentage float64  `json:"reductionPercentage"`
	PotentialSavings    float64  `json:"potentialSavings"`
	NewAmount           float64  `json:"newAmount"`
	AnnualSavings       float64  `json:"annualSavings"`
	Difficulty          string   `json:"difficulty"`
	Tips                []string `json:"tips"`
}

// GenerateCutbackSuggestions proposes percentage reductions for flexible
// categories averaging more than 50/month. One suggestion per reduction step
// of {10%, 15%, 20%, max}, deduplicated when the maximum equals a fixed step,
// sorted by potential savings descending.
func GenerateCutbackSuggestions(categoryAverages map[string]float64) []CutbackSuggestion {
	var suggestions []CutbackSuggestion

	for _, cat := range sortedKeys(categoryAverages) {
		monthlyAmount := categoryAverages[cat]
		info, ok := flexibleCategories[cat]
		if !ok || monthlyAmount <= cutbackMinimumMonthly {
			continue
		}

		steps := make([]float64, 0, len(reductionSteps)+1)
		for _, pct := range reductionSteps {
			if pct <= info.maxReduction {
				steps = append(steps, pct)
			}
		}
		if !containsStep(steps, info.maxReduction) {
			steps = append(steps, info.maxReduction)
		}

		for _, pct := range steps {
			potential := monthlyAmount * pct
			suggestions = append(suggestions, CutbackSuggestion{
				Category:            cat,
				CurrentAmount:       monthlyAmount,
				ReductionPercentage: pct * 100,
				PotentialSavings:    potential,
				NewAmount:           monthlyAmount - potential,
				AnnualSavings:       potential * 12,
				Difficulty:          info.difficulty,
				Tips:                info.tips,
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].PotentialSavings > suggestions[j].PotentialSavings
	})
	return suggestions
}

func containsStep(steps []float64, pct float64) bool {
	for _, s := range steps {
		if s == pct {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
