// Package chat answers free-text questions about spending data.
//
// Routing is a fixed priority list of (predicate, responder) pairs: the first
// matching intent wins. Predicates are not mutually exclusive, so the order
// is part of the behavior: expense analysis is checked before the generic
// spending summary so that "where am I spending too much" style questions are
// not swallowed by the "how much" handler. Do not reorder.
package chat

import (
	"math/rand"
	"strings"

	"spendy/internal/aggregate"
	"spendy/internal/core"
)

// Data is the read-only snapshot a reply is computed from.
type Data struct {
	Transactions []core.Transaction
	Monthly      aggregate.MonthlyData
}

// Engine routes questions to responders. The variant picker is injectable so
// tests can pin canned-response selection.
type Engine struct {
	pick func(n int) int
}

// Option configures an Engine.
type Option func(*Engine)

// WithPicker injects the canned-response selector.
func WithPicker(pick func(n int) int) Option {
	return func(e *Engine) { e.pick = pick }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{pick: rand.Intn}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type intent struct {
	name    string
	match   func(input string) bool
	respond func(e *Engine, input string, data Data) string
}

// intents in priority order.
var intents = []intent{
	{"greeting", isGreeting, (*Engine).greetingResponse},
	{"expense_analysis", isExpenseAnalysisRequest, (*Engine).expenseAnalysis},
	{"spending_summary", isSpendingSummaryRequest, (*Engine).spendingSummary},
	{"category_spending", isCategorySpendingRequest, (*Engine).categorySpending},
	{"savings", isSavingsRequest, (*Engine).savingsAdvice},
	{"trend", isTrendRequest, (*Engine).spendingTrends},
	{"budget", isBudgetRequest, (*Engine).budgetAdvice},
	{"time_period", isTimePeriodRequest, (*Engine).timePeriodAnalysis},
	{"comparison", isComparisonRequest, (*Engine).comparisonAnalysis},
	{"general", isGeneralSpendingQuestion, (*Engine).generalAnalysis},
}

// Reply answers a user question from the given data snapshot.
func (e *Engine) Reply(input string, data Data) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, in := range intents {
		if in.match(normalized) {
			return in.respond(e, normalized, data)
		}
	}
	return e.defaultResponse()
}

// Intent reports which intent a question routes to, for diagnostics.
func (e *Engine) Intent(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, in := range intents {
		if in.match(normalized) {
			return in.name
		}
	}
	return "default"
}
