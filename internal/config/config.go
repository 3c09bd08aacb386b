// Package config defines the data structures of a plan file and includes
// functions for loading and validating it.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/finance-engine/pkg/budget"
	"github.com/iwvelando/finance-engine/pkg/datetime"
	"github.com/iwvelando/finance-engine/pkg/debt"
	"github.com/iwvelando/finance-engine/pkg/recurring"
	"github.com/spf13/viper"
)

// Configuration holds everything a plan file can describe.
type Configuration struct {
	Logging       LoggingConfig       `yaml:"logging,omitempty"`
	Output        OutputConfig        `yaml:"output,omitempty"`
	Today         string              `yaml:"today,omitempty"` // YYYY-MM-DD or YYYY-MM; defaults to the current date
	Debt          DebtConfig          `yaml:"debt,omitempty"`
	Subscriptions SubscriptionsConfig `yaml:"subscriptions,omitempty"`
	Budget        BudgetConfig        `yaml:"budget,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// DebtConfig lists the debt accounts to project and the extra payment to
// test against each of them.
type DebtConfig struct {
	Strategy     string         `yaml:"strategy,omitempty"`
	ExtraPayment float64        `yaml:"extraPayment,omitempty"`
	Accounts     []debt.Account `yaml:"accounts,omitempty"`
}

// SubscriptionsConfig lists recurring costs.
type SubscriptionsConfig struct {
	Strict bool             `yaml:"strict,omitempty"`
	Items  []recurring.Item `yaml:"items,omitempty"`
}

// BudgetConfig holds category limits and the period's transactions.
type BudgetConfig struct {
	Categories   []budget.Category    `yaml:"categories,omitempty"`
	Transactions []budget.Transaction `yaml:"transactions,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// ReferenceDate returns the date payoff projections start from: the
// configured Today, or now truncated to the day when unset.
func (c *Configuration) ReferenceDate(now time.Time) (time.Time, error) {
	if strings.TrimSpace(c.Today) == "" {
		return datetime.Day(now), nil
	}
	return datetime.ParseDate(c.Today)
}

// Strategy returns the configured payoff strategy, avalanche when unset.
func (c *Configuration) Strategy() (debt.Strategy, error) {
	if strings.TrimSpace(c.Debt.Strategy) == "" {
		return debt.Avalanche, nil
	}
	return debt.ParseStrategy(c.Debt.Strategy)
}
