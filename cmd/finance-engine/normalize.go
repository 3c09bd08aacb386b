package main

import (
	"io"

	"github.com/iwvelando/finance-engine/internal/report"
	"github.com/iwvelando/finance-engine/pkg/output"
	"github.com/spf13/cobra"
)

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Total the plan's subscriptions as monthly and yearly amounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.loadPlan()
			if err != nil {
				return err
			}
			defer s.close()

			section := s.conf.Subscriptions
			section.Strict = section.Strict || strict
			totals, err := report.NewBuilder(s.logger).Subscriptions(section)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), s.format,
				func(w io.Writer) error { return output.PrettySubscriptions(w, totals) },
				func(w io.Writer) error { return output.CsvSubscriptions(w, totals) },
			)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on unknown billing cycles instead of ignoring them")
	return cmd
}
