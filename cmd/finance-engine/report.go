package main

import (
	"io"

	"github.com/iwvelando/finance-engine/internal/report"
	"github.com/iwvelando/finance-engine/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Run every calculator over the plan file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.loadPlan()
			if err != nil {
				return err
			}
			defer s.close()

			rep, err := report.NewBuilder(s.logger).Build(cmd.Context(), s.conf, s.today)
			if err != nil {
				s.logger.Error("failed to build report",
					zap.String("op", "main.report"),
					zap.Error(err),
				)
				return err
			}

			return render(cmd.OutOrStdout(), s.format,
				func(w io.Writer) error { return output.PrettyFormat(w, rep) },
				func(w io.Writer) error { return output.CsvFormat(w, rep) },
			)
		},
	}
}
