// Package constants provides shared constants for the finance-engine application.
package constants

// DateTimeLayout is the month-granularity format used for payoff dates in
// output and schedules.
const DateTimeLayout = "2006-01"

// DateLayout is the day-granularity format accepted for injected dates.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// WeeksPerYear is the number of billing weeks in a year
	WeeksPerYear = 52

	// WeeksPerMonth is the average number of weeks in a month used when
	// normalizing weekly charges
	WeeksPerMonth = 4.33

	// MaxSimulationMonths caps every amortization run (100 years)
	MaxSimulationMonths = 1200

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxPercentage caps the reported share of budget spent
	MaxPercentage = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default plan file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultCacheTTLSeconds is how long cached payoff results live
	DefaultCacheTTLSeconds = 3600
)
