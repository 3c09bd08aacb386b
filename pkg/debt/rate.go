// Package debt simulates paying down a single debt account and compares a
// minimum-payment plan against one with an extra monthly payment.
package debt

import (
	"math"
	"strings"

	"github.com/iwvelando/finance-engine/pkg/constants"
	"github.com/iwvelando/finance-engine/pkg/validation"
)

// MonthlyRate converts an annual percentage rate (15.99 meaning 15.99%) into
// the effective monthly rate. No rounding is applied.
func MonthlyRate(annualPercent float64) float64 {
	return annualPercent / constants.PercentageMultiplier / constants.MonthsPerYear
}

// PaymentForTerm returns the fixed monthly payment that retires balance in
// termMonths using the standard amortization formula.
func PaymentForTerm(balance, annualPercent float64, termMonths int) float64 {
	if termMonths <= 0 || balance <= 0 {
		return 0
	}
	if annualPercent == 0 {
		return balance / float64(termMonths)
	}

	rate := MonthlyRate(annualPercent)
	power := math.Pow(1+rate, float64(termMonths))
	discountFactor := (power - 1) / power
	return balance * rate / discountFactor
}

// Strategy labels a payoff plan. For a single account it is descriptive only
// and does not change the calculation.
type Strategy string

const (
	// Avalanche targets the highest interest rate first.
	Avalanche Strategy = "avalanche"
	// Snowball targets the smallest balance first.
	Snowball Strategy = "snowball"
)

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	return s == Avalanche || s == Snowball
}

func (s Strategy) String() string {
	return string(s)
}

// ParseStrategy maps a user supplied label onto a Strategy. Matching ignores
// case and surrounding whitespace; anything else is a validation error.
func ParseStrategy(value string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", validation.Errorf("strategy", "must be %q or %q, got %q", Avalanche, Snowball, value)
	}
	return s, nil
}
