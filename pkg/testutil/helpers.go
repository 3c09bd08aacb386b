// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/iwvelando/finance-engine/pkg/debt"
)

// FindPayoff finds a payoff result by account name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindPayoff(results []debt.PayoffResult, name string) *debt.PayoffResult {
	for i := range results {
		if results[i].AccountName == name {
			return &results[i]
		}
	}
	return nil
}

// AlmostEqual reports whether a and b differ by no more than tolerance.
func AlmostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
