// Package report runs every calculator over a plan file and gathers the
// results for output.
package report

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/iwvelando/finance-engine/internal/config"
	"github.com/iwvelando/finance-engine/pkg/budget"
	"github.com/iwvelando/finance-engine/pkg/debt"
	"github.com/iwvelando/finance-engine/pkg/recurring"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report holds the results for one plan.
type Report struct {
	Today         time.Time
	Strategy      debt.Strategy
	ExtraPayment  float64
	Payoffs       []debt.PayoffResult
	Subscriptions recurring.Totals
	Budget        budget.Status
}

// Builder computes reports. It is safe for concurrent use.
type Builder struct {
	logger     *zap.Logger
	calculator *debt.Calculator
	workers    int
}

// NewBuilder creates a Builder that logs through logger.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		logger:     logger,
		calculator: debt.NewCalculator(logger),
		workers:    runtime.NumCPU(),
	}
}

// Build computes payoffs, subscription totals and budget status for conf,
// projecting payoff dates from today.
func (b *Builder) Build(ctx context.Context, conf *config.Configuration, today time.Time) (*Report, error) {
	strategy, err := conf.Strategy()
	if err != nil {
		return nil, err
	}

	payoffs, err := b.Payoffs(ctx, conf.Debt.Accounts, conf.Debt.ExtraPayment, strategy, today)
	if err != nil {
		return nil, err
	}

	subscriptions, err := b.Subscriptions(conf.Subscriptions)
	if err != nil {
		return nil, err
	}

	status, err := b.Budget(conf.Budget)
	if err != nil {
		return nil, err
	}

	return &Report{
		Today:         today,
		Strategy:      strategy,
		ExtraPayment:  conf.Debt.ExtraPayment,
		Payoffs:       payoffs,
		Subscriptions: subscriptions,
		Budget:        status,
	}, nil
}

// Payoffs calculates every account concurrently. Results keep the order of
// accounts; the first error cancels the remaining work.
func (b *Builder) Payoffs(ctx context.Context, accounts []debt.Account, extraPayment float64,
	strategy debt.Strategy, today time.Time) ([]debt.PayoffResult, error) {
	results := make([]debt.PayoffResult, len(accounts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range accounts {
		account := accounts[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := b.calculator.Calculate(&account, extraPayment, strategy, today)
			if err != nil {
				return fmt.Errorf("account %q: %w", account.Name, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		b.logger.Error("payoff calculation failed",
			zap.String("op", "report.Payoffs"),
			zap.Error(err),
		)
		return nil, err
	}

	b.logger.Debug(fmt.Sprintf("calculated payoff for %d accounts", len(results)),
		zap.String("op", "report.Payoffs"),
		zap.String("strategy", strategy.String()),
	)
	return results, nil
}

// Subscriptions normalizes the configured recurring costs. Unknown billing
// cycles are skipped with a warning unless the section is strict.
func (b *Builder) Subscriptions(section config.SubscriptionsConfig) (recurring.Totals, error) {
	normalize := recurring.Normalize
	if section.Strict {
		normalize = recurring.NormalizeStrict
	}

	totals, err := normalize(section.Items)
	if err != nil {
		return recurring.Totals{}, err
	}
	for _, name := range totals.Ignored {
		b.logger.Warn(fmt.Sprintf("ignoring subscription %s with unknown billing cycle", name),
			zap.String("op", "report.Subscriptions"),
		)
	}
	return totals, nil
}

// Budget evaluates the configured categories against the transactions.
func (b *Builder) Budget(section config.BudgetConfig) (budget.Status, error) {
	status, err := budget.Evaluate(section.Categories, section.Transactions)
	if err != nil {
		return budget.Status{}, err
	}
	if over := status.OverBudgetNames(); len(over) > 0 {
		b.logger.Info(fmt.Sprintf("%d categories over budget", len(over)),
			zap.String("op", "report.Budget"),
			zap.Strings("categories", over),
		)
	}
	return status, nil
}
