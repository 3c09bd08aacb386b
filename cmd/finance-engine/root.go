package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/finance-engine/internal/config"
	"github.com/iwvelando/finance-engine/internal/logging"
	"github.com/iwvelando/finance-engine/pkg/constants"
	"github.com/iwvelando/finance-engine/pkg/datetime"
	"github.com/iwvelando/finance-engine/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath   string
	logLevel     string
	outputFormat string
	today        string
	now          func() time.Time
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "finance-engine",
		Short: "Debt payoff, subscription and budget calculator",
		Long: "Project debt payoff dates and interest savings, normalize recurring costs to " +
			"monthly and yearly totals, and check spending against a budget.",
		Version:      version,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", constants.DefaultConfigFile, "path to plan file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVarP(&opts.outputFormat, "output-format", "o", "", "type of output override: pretty, csv")
	flags.StringVar(&opts.today, "today", "", "reference date for payoff projections (YYYY-MM-DD), defaults to the plan's or the current date")

	cmd.AddCommand(
		newReportCmd(opts),
		newPayoffCmd(opts),
		newNormalizeCmd(opts),
		newBudgetCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// session is what a plan-driven command needs after startup.
type session struct {
	conf   *config.Configuration
	logger *zap.Logger
	format string
	today  time.Time
}

// loadPlan reads the plan file, builds the logger and resolves the output
// format and reference date. Configuration warnings are logged.
func (o *rootOptions) loadPlan() (*session, error) {
	conf, err := config.LoadConfiguration(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", o.configPath, err)
	}

	s, err := o.start(conf)
	if err != nil {
		return nil, err
	}

	for _, warning := range conf.ValidateConfiguration() {
		s.logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	return s, nil
}

// start builds a session around conf without reading a plan file.
func (o *rootOptions) start(conf *config.Configuration) (*session, error) {
	logger, err := logging.New(conf.Logging, o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// CLI override takes precedence over config
	format := conf.Output.Format
	if o.outputFormat != "" {
		format = o.outputFormat
	}
	if format == "" {
		format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		return nil, err
	}

	if strings.TrimSpace(o.today) != "" {
		conf.Today = o.today
	}
	today, err := conf.ReferenceDate(o.now())
	if err != nil {
		return nil, fmt.Errorf("invalid reference date: %w", err)
	}

	return &session{conf: conf, logger: logger, format: format, today: datetime.Day(today)}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func render(w io.Writer, format string, pretty, csv func(io.Writer) error) error {
	if format == constants.OutputFormatCSV {
		return csv(w)
	}
	return pretty(w)
}
