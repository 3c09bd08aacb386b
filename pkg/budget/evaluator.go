// Package budget aggregates transactions against category limits and flags
// categories whose spend exceeds their budget.
package budget

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/finance-engine/pkg/mathutil"
	"github.com/iwvelando/finance-engine/pkg/validation"
)

// Kind separates income from expense records.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// ParseKind normalizes case and whitespace.
func ParseKind(value string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(value)))
}

// Category is a budget line with its limit for the period.
type Category struct {
	Name   string  `json:"name" mapstructure:"name"`
	Amount float64 `json:"amount" mapstructure:"amount"`
	Type   Kind    `json:"type" mapstructure:"type"`
}

// Transaction is a single record, already filtered to the budget period.
type Transaction struct {
	Category string  `json:"category" mapstructure:"category"`
	Amount   float64 `json:"amount" mapstructure:"amount"`
	Type     Kind    `json:"type" mapstructure:"type"`
}

// Status is the evaluation of a budget against its transactions.
type Status struct {
	// Totals maps every category name to its expense spend.
	Totals map[string]float64
	// OverBudget holds the names of categories whose spend strictly
	// exceeds their limit.
	OverBudget      map[string]struct{}
	TotalBudget     float64
	TotalSpent      float64
	PercentageSpent float64

	limits map[string]float64
}

// IsOverBudget reports whether the named category is over budget.
func (s Status) IsOverBudget(name string) bool {
	_, over := s.OverBudget[name]
	return over
}

// OverBudgetNames returns the over-budget category names in sorted order.
func (s Status) OverBudgetNames() []string {
	names := make([]string, 0, len(s.OverBudget))
	for name := range s.OverBudget {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Names returns the budgeted category names in sorted order.
func (s Status) Names() []string {
	names := make([]string, 0, len(s.Totals))
	for name := range s.Totals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remaining returns the unspent part of a category's limit; negative when
// over budget and 0 for an unknown category.
func (s Status) Remaining(name string) float64 {
	limit, ok := s.limits[name]
	if !ok {
		return 0
	}
	return limit - s.Totals[name]
}

// Limit returns a category's budget limit.
func (s Status) Limit(name string) (float64, bool) {
	limit, ok := s.limits[name]
	return limit, ok
}

// Evaluate computes per-category expense spend and over-budget flags, plus
// budget-wide totals. Nil inputs are treated as empty lists. Categories that
// share a name share one spend total which is held against the smallest of
// their limits.
func Evaluate(categories []Category, transactions []Transaction) (Status, error) {
	status := Status{
		Totals:     make(map[string]float64, len(categories)),
		OverBudget: make(map[string]struct{}),
		limits:     make(map[string]float64, len(categories)),
	}

	for i, category := range categories {
		if err := validation.NonNegative(fmt.Sprintf("categories[%d].amount", i), category.Amount); err != nil {
			return Status{}, err
		}
		if limit, seen := status.limits[category.Name]; !seen || category.Amount < limit {
			status.limits[category.Name] = category.Amount
		}
		status.Totals[category.Name] = 0
		status.TotalBudget += category.Amount
	}

	for i, transaction := range transactions {
		if err := validation.NonNegative(fmt.Sprintf("transactions[%d].amount", i), transaction.Amount); err != nil {
			return Status{}, err
		}
		if ParseKind(string(transaction.Type)) != Expense {
			continue
		}
		status.TotalSpent += transaction.Amount
		if _, tracked := status.limits[transaction.Category]; tracked {
			status.Totals[transaction.Category] += transaction.Amount
		}
	}

	for name, limit := range status.limits {
		if status.Totals[name] > limit {
			status.OverBudget[name] = struct{}{}
		}
	}

	status.PercentageSpent = mathutil.CappedPercentage(status.TotalSpent, status.TotalBudget)
	return status, nil
}
