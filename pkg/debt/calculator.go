package debt

import (
	"fmt"
	"time"

	"github.com/iwvelando/finance-engine/pkg/datetime"
	"github.com/iwvelando/finance-engine/pkg/validation"
	"go.uber.org/zap"
)

// Account is a debt as supplied by the caller. It is never modified.
type Account struct {
	Name           string  `json:"name" mapstructure:"name"`
	Balance        float64 `json:"balance" mapstructure:"balance"`
	InterestRate   float64 `json:"interestRate" mapstructure:"interestRate"`
	MinimumPayment float64 `json:"minimumPayment" mapstructure:"minimumPayment"`
}

// Validate checks that every numeric field is finite and non-negative.
func (a *Account) Validate() error {
	if a == nil {
		return &validation.ValidationError{Field: "account", Message: "no account selected"}
	}
	if err := validation.NonNegative("balance", a.Balance); err != nil {
		return err
	}
	if err := validation.NonNegative("interestRate", a.InterestRate); err != nil {
		return err
	}
	return validation.NonNegative("minimumPayment", a.MinimumPayment)
}

// PayoffResult compares paying minimum+extra against paying the minimum only.
// TotalMonths, TotalInterest and PayoffDate describe the minimum+extra plan.
type PayoffResult struct {
	AccountName      string
	Strategy         Strategy
	TotalMonths      int
	TotalInterest    float64
	TotalPaid        float64
	MoneySaved       float64
	MonthsSaved      int
	PayoffDate       time.Time // zero when Status is NeverPaidOff
	Status           PayoffStatus
	BaselineMonths   int
	BaselineInterest float64
	BaselineStatus   PayoffStatus
}

// Calculator runs payoff comparisons. It keeps no state between calls and is
// safe for concurrent use.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a new calculator with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// Calculate simulates account under minimumPayment+extraPayment and under
// minimumPayment alone, and reports the difference. today anchors PayoffDate
// and is supplied by the caller so results are reproducible.
//
// A negative MoneySaved is a valid outcome, not an error. When the accelerated
// plan never pays the balance off, Status is NeverPaidOff and PayoffDate is
// the zero time.
func (c *Calculator) Calculate(account *Account, extraPayment float64, strategy Strategy, today time.Time) (PayoffResult, error) {
	if err := account.Validate(); err != nil {
		return PayoffResult{}, err
	}
	if err := validation.NonNegative("extraPayment", extraPayment); err != nil {
		return PayoffResult{}, err
	}
	if !strategy.Valid() {
		return PayoffResult{}, validation.Errorf("strategy", "must be %q or %q, got %q", Avalanche, Snowball, string(strategy))
	}
	if today.IsZero() {
		return PayoffResult{}, validation.Errorf("today", "is required")
	}

	rate := MonthlyRate(account.InterestRate)

	accelerated, err := Simulate(account.Balance, rate, account.MinimumPayment+extraPayment)
	if err != nil {
		return PayoffResult{}, fmt.Errorf("failed to simulate payoff for %s: %w", account.Name, err)
	}
	baseline, err := Simulate(account.Balance, rate, account.MinimumPayment)
	if err != nil {
		return PayoffResult{}, fmt.Errorf("failed to simulate baseline for %s: %w", account.Name, err)
	}

	result := PayoffResult{
		AccountName:      account.Name,
		Strategy:         strategy,
		TotalMonths:      accelerated.Months,
		TotalInterest:    accelerated.TotalInterest,
		TotalPaid:        account.Balance + accelerated.TotalInterest,
		MoneySaved:       baseline.TotalInterest - accelerated.TotalInterest,
		MonthsSaved:      baseline.Months - accelerated.Months,
		Status:           accelerated.Status,
		BaselineMonths:   baseline.Months,
		BaselineInterest: baseline.TotalInterest,
		BaselineStatus:   baseline.Status,
	}
	if accelerated.PaidOff() {
		result.PayoffDate = datetime.AddMonths(datetime.Day(today), accelerated.Months)
	} else {
		c.logger.Warn(fmt.Sprintf("account %s is never paid off at %.2f per month", account.Name,
			account.MinimumPayment+extraPayment),
			zap.String("op", "debt.Calculate"),
			zap.Int("months", accelerated.Months),
			zap.Float64("finalBalance", accelerated.FinalBalance),
		)
	}

	c.logger.Debug(fmt.Sprintf("calculated payoff for account %s", account.Name),
		zap.String("op", "debt.Calculate"),
		zap.String("strategy", strategy.String()),
		zap.Int("months", result.TotalMonths),
		zap.Int("baselineMonths", result.BaselineMonths),
		zap.Float64("moneySaved", result.MoneySaved),
	)

	return result, nil
}
