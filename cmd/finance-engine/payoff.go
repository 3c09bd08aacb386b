package main

import (
	"fmt"
	"io"

	"github.com/iwvelando/finance-engine/internal/config"
	"github.com/iwvelando/finance-engine/pkg/debt"
	"github.com/iwvelando/finance-engine/pkg/output"
	"github.com/iwvelando/finance-engine/pkg/validation"
	"github.com/spf13/cobra"
)

type payoffOptions struct {
	account  debt.Account
	extra    float64
	strategy string
	schedule bool
	term     int
}

func newPayoffCmd(opts *rootOptions) *cobra.Command {
	po := &payoffOptions{}

	cmd := &cobra.Command{
		Use:   "payoff",
		Short: "Compare paying the minimum against minimum plus extra for one account",
		Example: "  finance-engine payoff --balance 5000 --rate 19.99 --minimum 150 --extra 100\n" +
			"  finance-engine payoff --balance 1000 --minimum 100 --schedule -o csv\n" +
			"  finance-engine payoff --balance 14500 --rate 6.9 --minimum 340 --term 36",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPayoff(cmd, opts, po)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&po.account.Name, "name", "account", "account name used in output")
	flags.Float64Var(&po.account.Balance, "balance", 0, "current balance")
	flags.Float64Var(&po.account.InterestRate, "rate", 0, "annual interest rate in percent (19.99 means 19.99%)")
	flags.Float64Var(&po.account.MinimumPayment, "minimum", 0, "minimum monthly payment")
	flags.Float64Var(&po.extra, "extra", 0, "extra monthly payment on top of the minimum")
	flags.StringVar(&po.strategy, "strategy", string(debt.Avalanche), "payoff strategy label: avalanche or snowball")
	flags.BoolVar(&po.schedule, "schedule", false, "also print the month-by-month schedule")
	flags.IntVar(&po.term, "term", 0, "also print the fixed monthly payment that clears the balance in this many months")
	_ = cmd.MarkFlagRequired("balance")
	_ = cmd.MarkFlagRequired("minimum")

	return cmd
}

func runPayoff(cmd *cobra.Command, opts *rootOptions, po *payoffOptions) error {
	s, err := opts.start(&config.Configuration{})
	if err != nil {
		return err
	}
	defer s.close()

	strategy, err := debt.ParseStrategy(po.strategy)
	if err != nil {
		return err
	}
	if po.term < 0 {
		return validation.Errorf("term", "must not be negative, got %d", po.term)
	}

	result, err := debt.NewCalculator(s.logger).Calculate(&po.account, po.extra, strategy, s.today)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	err = render(w, s.format,
		func(w io.Writer) error { return output.PrettyPayoffs(w, []debt.PayoffResult{result}) },
		func(w io.Writer) error { return output.CsvPayoffs(w, []debt.PayoffResult{result}) },
	)
	if err != nil {
		return err
	}

	if po.term > 0 {
		payment := debt.PaymentForTerm(po.account.Balance, po.account.InterestRate, po.term)
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		err = render(w, s.format,
			func(w io.Writer) error { return output.PrettyTermPayment(w, po.account.Name, po.term, payment) },
			func(w io.Writer) error { return output.CsvTermPayment(w, po.account.Name, po.term, payment) },
		)
		if err != nil {
			return err
		}
	}

	if !po.schedule {
		return nil
	}

	amortization, err := debt.SimulateSchedule(po.account.Balance, debt.MonthlyRate(po.account.InterestRate),
		po.account.MinimumPayment+po.extra)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return render(w, s.format,
		func(w io.Writer) error { return output.PrettySchedule(w, amortization.Schedule) },
		func(w io.Writer) error { return output.CsvSchedule(w, amortization.Schedule) },
	)
}
