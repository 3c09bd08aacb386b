package debt

import (
	"fmt"
	"math"

	"github.com/iwvelando/finance-engine/pkg/constants"
	"github.com/iwvelando/finance-engine/pkg/mathutil"
	"github.com/iwvelando/finance-engine/pkg/validation"
)

// PayoffStatus distinguishes a balance that reached zero from one that was
// still outstanding when the simulation hit its month cap.
type PayoffStatus int

const (
	// PaidOff means the balance reached zero within the cap.
	PaidOff PayoffStatus = iota
	// NeverPaidOff means the payment never retires the balance under the
	// current terms, typically because it does not cover accrued interest.
	NeverPaidOff
)

func (s PayoffStatus) String() string {
	switch s {
	case PaidOff:
		return "paid_off"
	case NeverPaidOff:
		return "never_paid_off"
	default:
		return fmt.Sprintf("PayoffStatus(%d)", int(s))
	}
}

// MarshalText renders the status as its string form for JSON and YAML.
func (s PayoffStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Payment holds the values for a given month of a simulation.
type Payment struct {
	Month            int     `json:"month"`
	Payment          float64 `json:"payment"`
	Interest         float64 `json:"interest"`
	Principal        float64 `json:"principal"`
	RemainingBalance float64 `json:"remainingBalance"`
}

// Amortization is the outcome of one simulation run.
type Amortization struct {
	Months        int          `json:"months"`
	TotalInterest float64      `json:"totalInterest"`
	FinalBalance  float64      `json:"finalBalance"`
	Status        PayoffStatus `json:"status"`
	Schedule      []Payment    `json:"schedule,omitempty"`
}

// PaidOff reports whether the run retired the balance.
func (a Amortization) PaidOff() bool {
	return a.Status == PaidOff
}

// Simulate pays down startingBalance month by month with a fixed total
// monthlyPayment until the balance reaches zero or MaxSimulationMonths have
// elapsed. A payment that does not cover interest makes the balance grow; such
// runs end at the cap with Status NeverPaidOff.
func Simulate(startingBalance, monthlyRate, monthlyPayment float64) (Amortization, error) {
	return simulate(startingBalance, monthlyRate, monthlyPayment, false)
}

// SimulateSchedule is Simulate that also records every month in Schedule.
func SimulateSchedule(startingBalance, monthlyRate, monthlyPayment float64) (Amortization, error) {
	return simulate(startingBalance, monthlyRate, monthlyPayment, true)
}

// driftTolerance is a millionth of a currency unit, well under a cent.
const driftTolerance = 1e-6

func simulate(startingBalance, monthlyRate, monthlyPayment float64, record bool) (Amortization, error) {
	if err := validation.NonNegative("startingBalance", startingBalance); err != nil {
		return Amortization{}, err
	}
	if err := validation.NonNegative("monthlyRate", monthlyRate); err != nil {
		return Amortization{}, err
	}
	if err := validation.NonNegative("monthlyPayment", monthlyPayment); err != nil {
		return Amortization{}, err
	}

	var result Amortization
	remaining := startingBalance
	for remaining > 0 && result.Months < constants.MaxSimulationMonths {
		interest := remaining * monthlyRate
		principal := math.Min(monthlyPayment-interest, remaining)
		next := remaining - principal

		// A balance that grows long enough overflows; it was never going to
		// be paid off, so stop with the last finite totals.
		if !mathutil.IsFinite(next) || !mathutil.IsFinite(result.TotalInterest+interest) {
			result.Months = constants.MaxSimulationMonths
			break
		}

		result.TotalInterest += interest
		result.Months++

		// Rounding error from a computed payment can leave a balance far
		// below any real amount; that counts as paid.
		if principal > 0 && next < driftTolerance {
			next = 0
		}
		remaining = next

		if record {
			result.Schedule = append(result.Schedule, Payment{
				Month:            result.Months,
				Payment:          interest + principal,
				Interest:         interest,
				Principal:        principal,
				RemainingBalance: remaining,
			})
		}
	}

	result.FinalBalance = remaining
	if remaining > 0 {
		result.Status = NeverPaidOff
	}
	return result, nil
}
