package chat

import "strings"

func containsAny(input string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(input, k) {
			return true
		}
	}
	return false
}

var greetings = []string{
	"hi", "hello", "hey", "good morning", "good afternoon", "good evening",
	"thanks", "thank you",
}

// Greetings only count as exact matches or at the edges of the input, to
// avoid false positives like "this month" containing "hi".
func isGreeting(input string) bool {
	for _, g := range greetings {
		if input == g ||
			strings.HasPrefix(input, g+" ") ||
			strings.HasSuffix(input, " "+g) ||
			strings.HasPrefix(input, g+"!") ||
			strings.HasSuffix(input, " "+g+"!") {
			return true
		}
	}
	return false
}

var expenseAnalysisKeywords = []string{
	"biggest", "largest", "most", "highest", "expensive", "analyze",
	"breakdown", "too much", "spending too much", "overspending", "where",
	"which", "what category", "problem areas", "wasteful", "excessive",
	"spending patterns", "where am i spending", "where do i spend",
	"spending habits",
}

var overspendingPatterns = []string{
	"where do you think",
	"where am i spending too much",
	"where do i spend too much",
	"am i spending too much",
	"spending too much money",
	"overspending",
}

func isExpenseAnalysisRequest(input string) bool {
	return containsAny(input, expenseAnalysisKeywords) ||
		containsAny(input, overspendingPatterns)
}

var summaryKeywords = []string{
	"summary", "overview", "total", "spent", "spending", "expenses", "how much",
}

func isSpendingSummaryRequest(input string) bool {
	return containsAny(input, summaryKeywords) &&
		!strings.Contains(input, "category") &&
		!strings.Contains(input, "food") &&
		!strings.Contains(input, "entertainment")
}

var categoryKeywords = []string{
	"food", "dining", "entertainment", "shopping", "transport", "groceries",
	"housing", "rent",
}

func isCategorySpendingRequest(input string) bool {
	return containsAny(input, categoryKeywords)
}

var savingsKeywords = []string{
	"save", "saving", "savings", "tips", "advice", "recommendations", "reduce",
	"cut", "cut down", "lower my expenses", "spend less", "save money",
	"reduce spending",
}

func isSavingsRequest(input string) bool {
	return containsAny(input, savingsKeywords)
}

var trendKeywords = []string{
	"trend", "pattern", "change", "increase", "decrease", "over time", "month",
	"monthly",
}

func isTrendRequest(input string) bool {
	return containsAny(input, trendKeywords)
}

var budgetKeywords = []string{
	"budget", "budgeting", "plan", "planning", "allocate", "limit",
}

func isBudgetRequest(input string) bool {
	return containsAny(input, budgetKeywords)
}

var timePeriodKeywords = []string{
	"last month", "this month", "april", "may", "june", "week", "day",
}

func isTimePeriodRequest(input string) bool {
	return containsAny(input, timePeriodKeywords)
}

var comparisonKeywords = []string{
	"compare", "comparison", "vs", "versus", "difference", "between",
}

func isComparisonRequest(input string) bool {
	return containsAny(input, comparisonKeywords)
}

var generalKeywords = []string{
	"spending", "spend", "money", "expenses", "financial", "finances",
	"budget", "cost", "costs", "bills", "payments",
}

func isGeneralSpendingQuestion(input string) bool {
	return containsAny(input, generalKeywords) && !isSpecificRequest(input)
}

func isSpecificRequest(input string) bool {
	return isSpendingSummaryRequest(input) ||
		isCategorySpendingRequest(input) ||
		isSavingsRequest(input) ||
		isTrendRequest(input) ||
		isExpenseAnalysisRequest(input) ||
		isBudgetRequest(input) ||
		isTimePeriodRequest(input) ||
		isComparisonRequest(input)
}
