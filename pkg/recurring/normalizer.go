// Package recurring converts subscriptions and bills with different billing
// cadences into comparable monthly and yearly totals.
package recurring

import (
	"fmt"
	"strings"

	"github.com/iwvelando/finance-engine/pkg/constants"
	"github.com/iwvelando/finance-engine/pkg/validation"
)

// BillingCycle is the cadence at which a recurring cost is charged.
type BillingCycle string

const (
	Monthly BillingCycle = "monthly"
	Yearly  BillingCycle = "yearly"
	Weekly  BillingCycle = "weekly"
)

// Known reports whether c is a supported cadence.
func (c BillingCycle) Known() bool {
	switch c {
	case Monthly, Yearly, Weekly:
		return true
	}
	return false
}

// ParseBillingCycle normalizes case and whitespace. The returned cycle may
// still be unknown; callers decide whether that is an error.
func ParseBillingCycle(value string) BillingCycle {
	return BillingCycle(strings.ToLower(strings.TrimSpace(value)))
}

// Item is one recurring cost.
type Item struct {
	Name         string       `json:"name,omitempty" mapstructure:"name"`
	Amount       float64      `json:"amount" mapstructure:"amount"`
	BillingCycle BillingCycle `json:"billingCycle" mapstructure:"billingCycle"`
}

// Totals is the combined spend of a set of items.
type Totals struct {
	TotalMonthly float64 `json:"totalMonthly"`
	TotalYearly  float64 `json:"totalYearly"`
	// Ignored lists items skipped because of an unknown billing cycle,
	// identified by name or, when unnamed, by position.
	Ignored []string `json:"ignored,omitempty"`
}

// Normalize sums the monthly and yearly equivalents of items. Billing cycles
// match in any case with surrounding whitespace trimmed, so "Monthly" counts
// as monthly. Items with any other billing cycle are skipped and reported in
// Totals.Ignored.
func Normalize(items []Item) (Totals, error) {
	return normalize(items, false)
}

// NormalizeStrict is Normalize but rejects unknown billing cycles.
func NormalizeStrict(items []Item) (Totals, error) {
	return normalize(items, true)
}

func normalize(items []Item, strict bool) (Totals, error) {
	var totals Totals
	for i, item := range items {
		field := fmt.Sprintf("items[%d].amount", i)
		if err := validation.NonNegative(field, item.Amount); err != nil {
			return Totals{}, err
		}

		monthly, yearly, ok := Equivalents(item.Amount, ParseBillingCycle(string(item.BillingCycle)))
		if !ok {
			if strict {
				return Totals{}, validation.Errorf(fmt.Sprintf("items[%d].billingCycle", i),
					"must be %s, %s or %s, got %q", Monthly, Yearly, Weekly, item.BillingCycle)
			}
			totals.Ignored = append(totals.Ignored, itemLabel(i, item))
			continue
		}
		totals.TotalMonthly += monthly
		totals.TotalYearly += yearly
	}
	return totals, nil
}

// Equivalents returns the monthly and yearly cost of amount charged every
// cycle. ok is false for an unknown cycle.
func Equivalents(amount float64, cycle BillingCycle) (monthly, yearly float64, ok bool) {
	switch cycle {
	case Monthly:
		return amount, amount * constants.MonthsPerYear, true
	case Yearly:
		return amount / constants.MonthsPerYear, amount, true
	case Weekly:
		return amount * constants.WeeksPerMonth, amount * constants.WeeksPerYear, true
	}
	return 0, 0, false
}

func itemLabel(i int, item Item) string {
	if item.Name != "" {
		return item.Name
	}
	return fmt.Sprintf("item %d", i)
}
