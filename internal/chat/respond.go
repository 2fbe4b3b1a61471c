package chat

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"spendy/internal/category"
	"spendy/internal/core"
)

const noDataReply = "I don't have any transaction data to analyze yet. Please make sure your data is loaded!"

var greetingReplies = []string{
	"Hello! I'm here to help you understand your spending better.\n\nWhat would you like to know about your finances?",
	"Hi there! Ready to dive into your spending data?\n\nAsk me anything about your expenses!",
	"Hey! Let's explore your spending patterns together.\n\nWhat can I help you with today?",
}

func (e *Engine) greetingResponse(input string, data Data) string {
	return greetingReplies[e.pick(len(greetingReplies))]
}

func (e *Engine) spendingSummary(input string, data Data) string {
	if len(data.Transactions) == 0 {
		return noDataReply
	}

	var income, expenses float64
	for _, tx := range data.Transactions {
		if tx.IsDebit() {
			expenses += math.Abs(tx.Amount)
		} else {
			income += tx.Amount
		}
	}

	var avgMonthly float64
	if n := len(data.Monthly); n > 0 {
		avgMonthly = expenses / float64(n)
	}

	breakdown := categoryBreakdown(data.Transactions)
	topCategory, topAmount := largestCategory(breakdown)

	var b strings.Builder
	b.WriteString("Your Spending Summary\n\n")
	fmt.Fprintf(&b, "Total Expenses: %s\n", core.FormatEUR(expenses))
	fmt.Fprintf(&b, "Total Income: %s\n", core.FormatEUR(income))
	fmt.Fprintf(&b, "Net: %s\n\n", core.FormatEUR(income-expenses))
	fmt.Fprintf(&b, "Average Monthly Spending: %s\n", core.FormatEUR(avgMonthly))
	if topCategory != "" {
		fmt.Fprintf(&b, "Top Category: %s (%s)\n", topCategory, core.FormatEUR(topAmount))
	}
	b.WriteString("\nWant me to analyze a specific category or time period?")
	return b.String()
}

// categoryQuery maps question keywords to category labels, checked in order.
var categoryQuery = []struct {
	keyword string
	labels  []string
}{
	{"food", []string{category.FoodDining, category.GroceriesCafe}},
	{"dining", []string{category.FoodDining}},
	{"entertainment", []string{category.Entertainment}},
	{"shopping", []string{category.Shopping}},
	{"transport", []string{category.Transport}},
	{"groceries", []string{category.GroceriesCafe}},
	{"housing", []string{category.Housing}},
	{"rent", []string{category.Housing}},
}

func (e *Engine) categorySpending(input string, data Data) string {
	var targets []string
	for _, q := range categoryQuery {
		if strings.Contains(input, q.keyword) {
			targets = q.labels
			break
		}
	}
	if len(targets) == 0 {
		return "I couldn't identify the category you're asking about. Try asking about: food, entertainment, shopping, transport, groceries, or housing!"
	}

	inTargets := func(label string) bool {
		for _, t := range targets {
			if t == label {
				return true
			}
		}
		return false
	}

	var total float64
	var count int
	for _, tx := range data.Transactions {
		if tx.IsDebit() && inTargets(category.Categorize(tx.Description)) {
			total += math.Abs(tx.Amount)
			count++
		}
	}
	var avg float64
	if count > 0 {
		avg = total / float64(count)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Spending\n\n", strings.Join(targets, " & "))
	fmt.Fprintf(&b, "Total Spent: %s\n", core.FormatEUR(total))
	fmt.Fprintf(&b, "Number of Transactions: %d\n", count)
	fmt.Fprintf(&b, "Average per Transaction: %s\n", core.FormatEUR(avg))
	b.WriteString("\nWant some tips on how to save money in this category?")
	return b.String()
}

var savingsTips = map[string][]string{
	category.FoodDining: {
		"Cook more meals at home instead of dining out",
		"Use food delivery apps less frequently",
		"Pack lunches for work",
		"Plan meals and make shopping lists",
	},
	category.Entertainment: {
		"Consider subscription sharing with family or friends",
		"Look for free entertainment options in your area",
		"Use your local library for books, movies, and events",
		"Wait for sales before buying games or entertainment",
	},
	category.Shopping: {
		"Create a 24-hour waiting period before non-essential purchases",
		"Compare prices across different retailers",
		"Use cashback apps and browser extensions",
		"Make shopping lists and stick to them",
	},
	category.Transport: {
		"Consider carpooling or public transportation",
		"Use bike-sharing or walk for short distances",
		"Use apps to find cheaper fuel stations",
		"Look for free parking alternatives",
	},
	category.GroceriesCafe: {
		"Make coffee at home instead of buying daily",
		"Shop with a list and stick to it",
		"Compare prices at different stores",
		"Buy generic brands for basics",
	},
}

func (e *Engine) savingsAdvice(input string, data Data) string {
	breakdown := categoryBreakdown(data.Transactions)
	topCategory, topAmount := largestCategory(breakdown)

	var b strings.Builder
	b.WriteString("Personalized Savings Tips\n\n")
	if topCategory != "" {
		fmt.Fprintf(&b, "Focus Area: %s (%s)\n\n", topCategory, core.FormatEUR(topAmount))
		for _, tip := range savingsTips[topCategory] {
			fmt.Fprintf(&b, "- %s\n", tip)
		}
		fmt.Fprintf(&b, "\nPotential Monthly Savings: %s - %s\n\n",
			core.FormatEUR(topAmount*0.2), core.FormatEUR(topAmount*0.4))
	}
	b.WriteString("General Tips:\n")
	b.WriteString("- Set up automatic transfers to savings\n")
	b.WriteString("- Use the 50/30/20 budgeting rule\n")
	b.WriteString("- Review and cancel unused subscriptions\n")
	b.WriteString("- Track your spending daily\n\n")
	b.WriteString("Want specific advice for another category?")
	return b.String()
}

func (e *Engine) spendingTrends(input string, data Data) string {
	keys := data.Monthly.SortedKeys()
	if len(keys) < 2 {
		return "I need at least 2 months of data to show you spending trends. Keep tracking your expenses!"
	}

	var b strings.Builder
	b.WriteString("Your Spending Trends\n\n")
	var previous float64
	for i, key := range keys {
		spending := data.Monthly[key].Expenses
		fmt.Fprintf(&b, "%s: %s", key, core.FormatEUR(spending))
		if i > 0 && previous > 0 {
			change := spending - previous
			changePct := change / previous * 100
			switch {
			case change > 0:
				fmt.Fprintf(&b, " (up %s, +%.1f%%)", core.FormatEUR(change), changePct)
			case change < 0:
				fmt.Fprintf(&b, " (down %s, %.1f%%)", core.FormatEUR(-change), changePct)
			default:
				b.WriteString(" (no change)")
			}
		}
		b.WriteString("\n")
		previous = spending
	}

	first := data.Monthly[keys[0]].Expenses
	last := data.Monthly[keys[len(keys)-1]].Expenses
	b.WriteString("\nOverall Trend: ")
	switch {
	case first <= 0:
		b.WriteString("Not enough spending history for an overall change")
	case last > first:
		fmt.Fprintf(&b, "Spending increased by %s (%.1f%%)", core.FormatEUR(last-first), (last-first)/first*100)
	case last < first:
		fmt.Fprintf(&b, "Spending decreased by %s (%.1f%%)", core.FormatEUR(first-last), (first-last)/first*100)
	default:
		b.WriteString("Spending remained stable")
	}
	return b.String()
}

// Problem-area thresholds: share of total expenses above which a category is
// called out.
const (
	foodConcernPct          = 25
	entertainmentConcernPct = 15
	shoppingConcernPct      = 20
)

func (e *Engine) expenseAnalysis(input string, data Data) string {
	breakdown := categoryBreakdown(data.Transactions)
	if len(breakdown) == 0 {
		return "I don't have enough transaction data to analyze your spending patterns. Please make sure your data is loaded!"
	}

	sorted := sortedByAmount(breakdown)
	var totalExpenses float64
	for _, entry := range sorted {
		totalExpenses += entry.amount
	}

	var b strings.Builder
	b.WriteString("Where You Might Be Spending Too Much\n\n")
	b.WriteString("Your Top Spending Categories:\n")
	for i, entry := range sorted {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "%d. %s: %s (%.1f%%)\n",
			i+1, entry.label, core.FormatEUR(entry.amount), percentOf(entry.amount, totalExpenses))
	}

	b.WriteString("\nAreas of Concern:\n")
	type concern struct {
		label      string
		amount     float64
		pct        float64
		issue      string
		suggestion string
	}
	var concerns []concern

	foodTotal := breakdown[category.FoodDining] + breakdown[category.GroceriesCafe]
	if pct := percentOf(foodTotal, totalExpenses); pct > foodConcernPct {
		concerns = append(concerns, concern{category.FoodDining, foodTotal, pct,
			"Food spending is quite high",
			"Consider cooking more meals at home and reducing takeout and restaurant visits"})
	}
	if pct := percentOf(breakdown[category.Entertainment], totalExpenses); pct > entertainmentConcernPct {
		concerns = append(concerns, concern{category.Entertainment, breakdown[category.Entertainment], pct,
			"Entertainment spending is above average",
			"Look for free or low-cost entertainment alternatives"})
	}
	if pct := percentOf(breakdown[category.Shopping], totalExpenses); pct > shoppingConcernPct {
		concerns = append(concerns, concern{category.Shopping, breakdown[category.Shopping], pct,
			"Shopping expenses are quite high",
			"Try a 24-hour wait rule before purchases and create shopping lists"})
	}

	if len(concerns) > 0 {
		for _, c := range concerns {
			fmt.Fprintf(&b, "- %s: %s (%.1f%%) - %s\n", c.label, core.FormatEUR(c.amount), c.pct, c.issue)
			fmt.Fprintf(&b, "  Suggestion: %s\n", c.suggestion)
		}
	} else {
		b.WriteString("- Your spending seems well-balanced across categories!\n")
	}

	if largest, ok := largestDebit(data.Transactions); ok {
		fmt.Fprintf(&b, "\nLargest Single Expense: %s\n", core.FormatEUR(math.Abs(largest.Amount)))
		fmt.Fprintf(&b, "Description: %s\n", largest.Description)
		fmt.Fprintf(&b, "Date: %s\n", largest.Date.Format("2006-01-02"))
	}

	b.WriteString("\nOverall Assessment:\n")
	switch {
	case len(concerns) > 2:
		b.WriteString("You have several areas where you could potentially reduce spending. Focus on the highest categories first!")
	case len(concerns) > 0:
		b.WriteString("You're doing well overall, but there are a few areas where you could optimize your spending.")
	default:
		b.WriteString("Great job! Your spending appears to be well-distributed across categories.")
	}
	return b.String()
}

func (e *Engine) budgetAdvice(input string, data Data) string {
	if len(data.Transactions) == 0 {
		return noDataReply
	}

	var income, expenses float64
	for _, tx := range data.Transactions {
		if tx.IsDebit() {
			expenses += math.Abs(tx.Amount)
		} else {
			income += tx.Amount
		}
	}
	months := len(data.Monthly)
	if months < 1 {
		months = 1
	}
	monthlyIncome := income / float64(months)
	monthlyExpenses := expenses / float64(months)

	var b strings.Builder
	b.WriteString("Budget Recommendations\n\n")
	fmt.Fprintf(&b, "Monthly Income: %s\n", core.FormatEUR(monthlyIncome))
	fmt.Fprintf(&b, "Monthly Expenses: %s\n", core.FormatEUR(monthlyExpenses))
	fmt.Fprintf(&b, "Net Monthly: %s\n\n", core.FormatEUR(monthlyIncome-monthlyExpenses))

	b.WriteString("50/30/20 Rule Breakdown:\n")
	fmt.Fprintf(&b, "- Needs (50%%): %s\n", core.FormatEUR(monthlyIncome*0.5))
	fmt.Fprintf(&b, "- Wants (30%%): %s\n", core.FormatEUR(monthlyIncome*0.3))
	fmt.Fprintf(&b, "- Savings (20%%): %s\n\n", core.FormatEUR(monthlyIncome*0.2))

	breakdown := categoryBreakdown(data.Transactions)
	if len(breakdown) > 0 {
		b.WriteString("Suggested Monthly Category Budgets:\n")
		var total float64
		for _, amount := range breakdown {
			total += amount
		}
		for _, entry := range sortedByAmount(breakdown) {
			fmt.Fprintf(&b, "- %s: %s (%.1f%%)\n",
				entry.label, core.FormatEUR(entry.amount/float64(months)), entry.amount/total*100)
		}
	}
	return b.String()
}

func (e *Engine) timePeriodAnalysis(input string, data Data) string {
	keys := data.Monthly.SortedKeys()
	if strings.Contains(input, "last month") || strings.Contains(input, "previous month") {
		if len(keys) >= 2 {
			key := keys[len(keys)-2]
			summary := data.Monthly[key]
			var b strings.Builder
			fmt.Fprintf(&b, "%s Analysis\n\n", key)
			fmt.Fprintf(&b, "Total Spending: %s\n", core.FormatEUR(summary.Expenses))
			fmt.Fprintf(&b, "Total Income: %s\n", core.FormatEUR(summary.Income))
			b.WriteString("\nWant me to break this down by category?")
			return b.String()
		}
	}
	return "I can analyze your spending for different time periods! Try asking about 'last month' or 'this month'."
}

func (e *Engine) comparisonAnalysis(input string, data Data) string {
	keys := data.Monthly.SortedKeys()
	if len(keys) < 2 {
		return "I need at least 2 months of data to make comparisons. Keep tracking your expenses!"
	}

	latestKey := keys[len(keys)-1]
	previousKey := keys[len(keys)-2]
	latest := data.Monthly[latestKey].Expenses
	previous := data.Monthly[previousKey].Expenses

	var b strings.Builder
	b.WriteString("Month-to-Month Comparison\n\n")
	fmt.Fprintf(&b, "%s: %s\n", previousKey, core.FormatEUR(previous))
	fmt.Fprintf(&b, "%s: %s\n\n", latestKey, core.FormatEUR(latest))

	change := latest - previous
	switch {
	case change > 0 && previous > 0:
		fmt.Fprintf(&b, "Increase: %s (+%.1f%%)\n", core.FormatEUR(change), change/previous*100)
		b.WriteString("Tip: Your spending increased. Consider reviewing your recent purchases!")
	case change < 0 && previous > 0:
		fmt.Fprintf(&b, "Decrease: %s (-%.1f%%)\n", core.FormatEUR(-change), -change/previous*100)
		b.WriteString("Great job: You've reduced your spending! Keep it up!")
	default:
		b.WriteString("No change: Your spending remained consistent.")
	}
	return b.String()
}

func (e *Engine) generalAnalysis(input string, data Data) string {
	if len(data.Transactions) == 0 {
		return noDataReply
	}

	var income, expenses float64
	for _, tx := range data.Transactions {
		if tx.IsDebit() {
			expenses += math.Abs(tx.Amount)
		} else {
			income += tx.Amount
		}
	}
	months := len(data.Monthly)
	if months < 1 {
		months = 1
	}
	avgMonthly := expenses / float64(months)

	breakdown := categoryBreakdown(data.Transactions)
	sorted := sortedByAmount(breakdown)

	var b strings.Builder
	b.WriteString("Your Spending Overview\n\n")
	fmt.Fprintf(&b, "Total Spending: %s\n", core.FormatEUR(expenses))
	fmt.Fprintf(&b, "Monthly Average: %s\n", core.FormatEUR(avgMonthly))
	net := "Positive"
	if income <= expenses {
		net = "Negative"
	}
	fmt.Fprintf(&b, "Income vs Expenses: %s (%s)\n\n", net, core.FormatEUR(income-expenses))

	b.WriteString("Top 3 Spending Categories:\n")
	for i, entry := range sorted {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "%d. %s: %s (%.1f%%)\n",
			i+1, entry.label, core.FormatEUR(entry.amount), percentOf(entry.amount, expenses))
	}

	b.WriteString("\nQuick Insights:\n")
	fmt.Fprintf(&b, "- You spend about %s per day on average\n", core.FormatEUR(avgMonthly/30))
	if len(sorted) > 0 {
		fmt.Fprintf(&b, "- Your biggest expense category is %s\n", sorted[0].label)
	}
	fmt.Fprintf(&b, "- You have %d different spending categories\n\n", len(breakdown))
	b.WriteString("Want me to dive deeper into any specific area? Just ask!")
	return b.String()
}

var defaultReplies = []string{
	"I'm here to help you understand your spending! Try asking me:\n\n- 'What's my spending summary?'\n- 'How much did I spend on food?'\n- 'What are my biggest expenses?'\n- 'Show me my spending trends'\n- 'Give me savings tips'",
	"I can help you analyze your finances! Here are some things you can ask:\n\n- Category-specific spending questions\n- Monthly comparisons\n- Savings recommendations\n- Budget advice\n- Expense breakdowns",
	"Let me help you with your finances! I can answer questions about:\n\n- Your spending patterns\n- Budget recommendations\n- Savings opportunities\n- Expense categories\n- Monthly trends",
}

func (e *Engine) defaultResponse() string {
	return defaultReplies[e.pick(len(defaultReplies))]
}

type categoryEntry struct {
	label  string
	amount float64
}

func categoryBreakdown(transactions []core.Transaction) map[string]float64 {
	breakdown := make(map[string]float64)
	for _, tx := range transactions {
		if tx.IsDebit() {
			breakdown[category.Categorize(tx.Description)] += math.Abs(tx.Amount)
		}
	}
	return breakdown
}

func sortedByAmount(breakdown map[string]float64) []categoryEntry {
	entries := make([]categoryEntry, 0, len(breakdown))
	for label, amount := range breakdown {
		entries = append(entries, categoryEntry{label, amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].amount != entries[j].amount {
			return entries[i].amount > entries[j].amount
		}
		return entries[i].label < entries[j].label
	})
	return entries
}

func largestCategory(breakdown map[string]float64) (string, float64) {
	entries := sortedByAmount(breakdown)
	if len(entries) == 0 {
		return "", 0
	}
	return entries[0].label, entries[0].amount
}

// percentOf returns part as a percentage of total, 0 when total is zero.
func percentOf(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

func largestDebit(transactions []core.Transaction) (core.Transaction, bool) {
	var largest core.Transaction
	found := false
	for _, tx := range transactions {
		if !tx.IsDebit() {
			continue
		}
		if !found || math.Abs(tx.Amount) > math.Abs(largest.Amount) {
			largest = tx
			found = true
		}
	}
	return largest, found
}
