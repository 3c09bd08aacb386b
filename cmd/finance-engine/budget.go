package main

import (
	"io"

	"github.com/iwvelando/finance-engine/internal/report"
	"github.com/iwvelando/finance-engine/pkg/output"
	"github.com/spf13/cobra"
)

func newBudgetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Check the plan's transactions against its budget categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.loadPlan()
			if err != nil {
				return err
			}
			defer s.close()

			status, err := report.NewBuilder(s.logger).Budget(s.conf.Budget)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), s.format,
				func(w io.Writer) error { return output.PrettyBudget(w, status) },
				func(w io.Writer) error { return output.CsvBudget(w, status) },
			)
		},
	}
}
