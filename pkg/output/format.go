// Package output renders calculation results as human-readable tables or CSV.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/finance-engine/internal/report"
	"github.com/iwvelando/finance-engine/pkg/budget"
	"github.com/iwvelando/finance-engine/pkg/constants"
	"github.com/iwvelando/finance-engine/pkg/debt"
	"github.com/iwvelando/finance-engine/pkg/recurring"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders rep in the named format.
func Write(w io.Writer, format string, rep *report.Report) error {
	switch format {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, rep)
	case constants.OutputFormatCSV:
		return CsvFormat(w, rep)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, rep *report.Report) error {
	if err := PrettyPayoffs(w, rep.Payoffs); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := PrettySubscriptions(w, rep.Subscriptions); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return PrettyBudget(w, rep.Budget)
}

// PrettyPayoffs writes one block per payoff result.
func PrettyPayoffs(w io.Writer, results []debt.PayoffResult) error {
	p := message.NewPrinter(language.English)
	for _, result := range results {
		_, _ = p.Fprintf(w, "--- Payoff for account %s (%s) ---\n", result.AccountName, result.Strategy)
		if result.Status != debt.PaidOff {
			_, _ = p.Fprintf(w, "Never paid off within %d months\n", result.TotalMonths)
		} else {
			_, _ = p.Fprintf(w, "Payoff date:       %s (%d months)\n",
				result.PayoffDate.Format(constants.DateLayout), result.TotalMonths)
		}
		_, _ = p.Fprintf(w, "Total interest:    $%.2f\n", result.TotalInterest)
		_, _ = p.Fprintf(w, "Total paid:        $%.2f\n", result.TotalPaid)
		_, _ = p.Fprintf(w, "Minimum only:      %s, $%.2f interest\n",
			monthsLabel(result.BaselineMonths, result.BaselineStatus), result.BaselineInterest)
		_, err := p.Fprintf(w, "Interest saved:    $%.2f (%d months sooner)\n", result.MoneySaved, result.MonthsSaved)
		if err != nil {
			return err
		}
	}
	return nil
}

// PrettySchedule writes a month-by-month amortization table.
func PrettySchedule(w io.Writer, schedule []debt.Payment) error {
	p := message.NewPrinter(language.English)
	_, _ = fmt.Fprintf(w, "Month | Payment | Interest | Principal | Balance\n")
	_, _ = fmt.Fprintf(w, "_____ | _______ | ________ | _________ | _______\n")
	for _, row := range schedule {
		_, err := p.Fprintf(w, "%d | $%.2f | $%.2f | $%.2f | $%.2f\n",
			row.Month, row.Payment, row.Interest, row.Principal, row.RemainingBalance)
		if err != nil {
			return err
		}
	}
	return nil
}

// PrettySubscriptions writes normalized recurring totals.
func PrettySubscriptions(w io.Writer, totals recurring.Totals) error {
	p := message.NewPrinter(language.English)
	_, _ = fmt.Fprintf(w, "--- Subscriptions ---\n")
	_, _ = p.Fprintf(w, "Monthly total: $%.2f\n", totals.TotalMonthly)
	_, err := p.Fprintf(w, "Yearly total:  $%.2f\n", totals.TotalYearly)
	if err != nil {
		return err
	}
	if len(totals.Ignored) > 0 {
		_, err = fmt.Fprintf(w, "Ignored (unknown billing cycle): %s\n", strings.Join(totals.Ignored, ", "))
	}
	return err
}

// PrettyBudget writes per-category spend followed by budget-wide totals.
func PrettyBudget(w io.Writer, status budget.Status) error {
	p := message.NewPrinter(language.English)
	_, _ = fmt.Fprintf(w, "--- Budget ---\n")
	_, _ = fmt.Fprintf(w, "Category | Limit | Spent | Remaining | Status\n")
	_, _ = fmt.Fprintf(w, "________ | _____ | _____ | _________ | ______\n")
	for _, name := range status.Names() {
		limit, _ := status.Limit(name)
		state := "ok"
		if status.IsOverBudget(name) {
			state = "OVER"
		}
		_, _ = p.Fprintf(w, "%s | $%.2f | $%.2f | $%.2f | %s\n",
			name, limit, status.Totals[name], status.Remaining(name), state)
	}
	_, err := p.Fprintf(w, "Spent $%.2f of $%.2f (%.1f%%)\n",
		status.TotalSpent, status.TotalBudget, status.PercentageSpent)
	return err
}

// PrettyTermPayment prints the fixed monthly payment that clears accountName
// in termMonths.
func PrettyTermPayment(w io.Writer, accountName string, termMonths int, payment float64) error {
	p := message.NewPrinter(language.English)
	_, err := p.Fprintf(w, "Payment to clear %s in %d months: $%.2f\n", accountName, termMonths, payment)
	return err
}

func monthsLabel(months int, status debt.PayoffStatus) string {
	if status != debt.PaidOff {
		return "never paid off"
	}
	return fmt.Sprintf("%d months", months)
}

var csvHeader = []string{"section", "name", "metric", "value"}

// CsvFormat outputs the report in comma-separated value format, one
// section/name/metric/value record per line.
func CsvFormat(w io.Writer, rep *report.Report) error {
	return writeCsv(w, func(cw *csv.Writer) {
		writePayoffRecords(cw, rep.Payoffs)
		writeSubscriptionRecords(cw, rep.Subscriptions)
		writeBudgetRecords(cw, rep.Budget)
	})
}

// CsvPayoffs outputs payoff results in the same layout as CsvFormat.
func CsvPayoffs(w io.Writer, results []debt.PayoffResult) error {
	return writeCsv(w, func(cw *csv.Writer) { writePayoffRecords(cw, results) })
}

// CsvTermPayment outputs the fixed payment for a term in the same layout as
// CsvFormat.
func CsvTermPayment(w io.Writer, accountName string, termMonths int, payment float64) error {
	return writeCsv(w, func(cw *csv.Writer) {
		_ = cw.Write([]string{"payoff", accountName, "termMonths", strconv.Itoa(termMonths)})
		_ = cw.Write([]string{"payoff", accountName, "termPayment", money(payment)})
	})
}

// CsvSubscriptions outputs subscription totals in the same layout as CsvFormat.
func CsvSubscriptions(w io.Writer, totals recurring.Totals) error {
	return writeCsv(w, func(cw *csv.Writer) { writeSubscriptionRecords(cw, totals) })
}

// CsvBudget outputs budget status in the same layout as CsvFormat.
func CsvBudget(w io.Writer, status budget.Status) error {
	return writeCsv(w, func(cw *csv.Writer) { writeBudgetRecords(cw, status) })
}

func writeCsv(w io.Writer, records func(cw *csv.Writer)) error {
	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)
	records(cw)
	cw.Flush()
	return cw.Error()
}

func writePayoffRecords(cw *csv.Writer, results []debt.PayoffResult) {
	for _, result := range results {
		payoffDate := ""
		if result.Status == debt.PaidOff {
			payoffDate = result.PayoffDate.Format(constants.DateLayout)
		}
		rows := [][2]string{
			{"strategy", result.Strategy.String()},
			{"status", result.Status.String()},
			{"months", strconv.Itoa(result.TotalMonths)},
			{"payoffDate", payoffDate},
			{"totalInterest", money(result.TotalInterest)},
			{"totalPaid", money(result.TotalPaid)},
			{"baselineMonths", strconv.Itoa(result.BaselineMonths)},
			{"baselineInterest", money(result.BaselineInterest)},
			{"moneySaved", money(result.MoneySaved)},
			{"monthsSaved", strconv.Itoa(result.MonthsSaved)},
		}
		for _, row := range rows {
			_ = cw.Write([]string{"payoff", result.AccountName, row[0], row[1]})
		}
	}
}

func writeSubscriptionRecords(cw *csv.Writer, totals recurring.Totals) {
	_ = cw.Write([]string{"subscriptions", "", "totalMonthly", money(totals.TotalMonthly)})
	_ = cw.Write([]string{"subscriptions", "", "totalYearly", money(totals.TotalYearly)})
	for _, name := range totals.Ignored {
		_ = cw.Write([]string{"subscriptions", name, "ignored", "true"})
	}
}

func writeBudgetRecords(cw *csv.Writer, status budget.Status) {
	for _, name := range status.Names() {
		limit, _ := status.Limit(name)
		_ = cw.Write([]string{"budget", name, "limit", money(limit)})
		_ = cw.Write([]string{"budget", name, "spent", money(status.Totals[name])})
		_ = cw.Write([]string{"budget", name, "overBudget", strconv.FormatBool(status.IsOverBudget(name))})
	}
	_ = cw.Write([]string{"budget", "", "totalBudget", money(status.TotalBudget)})
	_ = cw.Write([]string{"budget", "", "totalSpent", money(status.TotalSpent)})
	_ = cw.Write([]string{"budget", "", "percentageSpent", strconv.FormatFloat(status.PercentageSpent, 'f', 2, 64)})
}

// CsvSchedule outputs an amortization schedule in comma-separated value format.
func CsvSchedule(w io.Writer, schedule []debt.Payment) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"month", "payment", "interest", "principal", "balance"})
	for _, row := range schedule {
		_ = cw.Write([]string{
			strconv.Itoa(row.Month),
			money(row.Payment),
			money(row.Interest),
			money(row.Principal),
			money(row.RemainingBalance),
		})
	}
	cw.Flush()
	return cw.Error()
}

func money(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
