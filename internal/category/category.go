// Package category assigns spending categories to transaction descriptions.
//
// Categorization is a case-insensitive substring match over an ordered rule
// table: the first matching rule wins, so a description that mentions both
// "pizza" and "netflix" lands in Food & Dining. The ordering is deliberate
// and must not be reshuffled.
package category

import "strings"

const (
	FoodDining    = "Food & Dining"
	Entertainment = "Entertainment"
	Shopping      = "Shopping"
	Transport     = "Transport"
	GroceriesCafe = "Groceries & Cafe"
	Housing       = "Housing"
	Services      = "Services"
	Fees          = "Fees"
	Transfers     = "Transfers"
	Refunds       = "Refunds"
	Income        = "Income"
	Other         = "Other"
)

type rule struct {
	label      string
	substrings []string
}

// rules is the single authoritative table. Earlier rules take precedence.
var rules = []rule{
	{FoodDining, []string{"mcdonald", "dpz", "domino", "pizza"}},
	{Entertainment, []string{"netflix", "spotify", "concert", "cinema"}},
	{Shopping, []string{"bookstore", "amazon", "amzn", "tech store", "zara", "google"}},
	{Transport, []string{"parking", "garage"}},
	{GroceriesCafe, []string{"lidl", "local deli", "starbucks"}},
	{Income, []string{"payroll", "acme"}},
	{Refunds, []string{"refund"}},
	{Housing, []string{"rent", "monthlyren"}},
	{Transfers, []string{"revolut", "p2p"}},
	{Services, []string{"malta post"}},
	{Fees, []string{"fx fee", "conv to"}},
}

// All lists every category label, in rule order with the fallback last.
func All() []string {
	labels := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		labels = append(labels, r.label)
	}
	labels = append(labels, Other)
	return labels
}

// Categorize maps a free-text description to a category label.
// It is total: descriptions matching no rule fall back to Other.
func Categorize(description string) string {
	desc := strings.ToLower(description)
	for _, r := range rules {
		for _, sub := range r.substrings {
			if strings.Contains(desc, sub) {
				return r.label
			}
		}
	}
	return Other
}
