package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/finance-engine/internal/config"
	"github.com/iwvelando/finance-engine/internal/report"
	"github.com/iwvelando/finance-engine/pkg/debt"
	"github.com/iwvelando/finance-engine/pkg/output"
	"github.com/iwvelando/finance-engine/pkg/testutil"
	"go.uber.org/zap"
)

const examplePlan = "../../config.yaml.example"

// buildExample loads and processes the example plan exactly as the report
// command does.
func buildExample(t *testing.T) (*config.Configuration, *report.Report) {
	t.Helper()

	conf, err := config.LoadConfiguration(examplePlan)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	today, err := conf.ReferenceDate(time.Now())
	if err != nil {
		t.Fatalf("ReferenceDate() error = %v", err)
	}

	rep, err := report.NewBuilder(zap.NewNop()).Build(context.Background(), conf, today)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return conf, rep
}

func TestExamplePlanBaseline(t *testing.T) {
	_, rep := buildExample(t)

	if len(rep.Payoffs) != 3 {
		t.Fatalf("Expected 3 payoff results, got %d", len(rep.Payoffs))
	}

	furniture := testutil.FindPayoff(rep.Payoffs, "Furniture financing")
	if furniture == nil {
		t.Fatal("Missing payoff for Furniture financing")
	}
	if furniture.TotalMonths != 8 || furniture.BaselineMonths != 24 {
		t.Errorf("Furniture financing months = %d (baseline %d), expected 8 (24)",
			furniture.TotalMonths, furniture.BaselineMonths)
	}
	if got := furniture.PayoffDate.Format("2006-01-02"); got != "2025-09-15" {
		t.Errorf("Furniture financing payoff date = %s, expected 2025-09-15", got)
	}

	for _, name := range []string{"Rewards card", "Car loan"} {
		result := testutil.FindPayoff(rep.Payoffs, name)
		if result == nil {
			t.Fatalf("Missing payoff for %s", name)
		}
		if result.Status != debt.PaidOff || result.BaselineStatus != debt.PaidOff {
			t.Errorf("%s should be paid off under both plans, got %s/%s", name, result.Status, result.BaselineStatus)
		}
		if result.MoneySaved <= 0 || result.MonthsSaved <= 0 {
			t.Errorf("%s extra payment should save interest and time, got %.2f / %d months",
				name, result.MoneySaved, result.MonthsSaved)
		}
	}

	if !testutil.AlmostEqual(rep.Subscriptions.TotalMonthly, 294.3527, 1e-6) {
		t.Errorf("Monthly subscriptions = %.4f, expected 294.3527", rep.Subscriptions.TotalMonthly)
	}
	if !testutil.AlmostEqual(rep.Subscriptions.TotalYearly, 3534.63, 1e-6) {
		t.Errorf("Yearly subscriptions = %.4f, expected 3534.63", rep.Subscriptions.TotalYearly)
	}

	if over := rep.Budget.OverBudgetNames(); len(over) != 1 || over[0] != "Dining out" {
		t.Errorf("Over budget = %v, expected [Dining out]", over)
	}
	if !testutil.AlmostEqual(rep.Budget.TotalSpent, 991.77, 1e-6) {
		t.Errorf("Total spent = %.2f, expected 991.77", rep.Budget.TotalSpent)
	}
	if !testutil.AlmostEqual(rep.Budget.TotalBudget, 6350, 1e-6) {
		t.Errorf("Total budget = %.2f, expected 6350", rep.Budget.TotalBudget)
	}
}

func TestExamplePlanWarnings(t *testing.T) {
	conf, _ := buildExample(t)

	warnings := conf.ValidateConfiguration()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Entertainment") {
		t.Errorf("Expected a single warning about the unbudgeted Entertainment spend, got %v", warnings)
	}
}

func TestDataConsistency(t *testing.T) {
	_, rep := buildExample(t)

	for _, result := range rep.Payoffs {
		t.Run(result.AccountName, func(t *testing.T) {
			if result.TotalInterest > result.BaselineInterest+1e-9 {
				t.Errorf("paying more should never cost more interest: %.2f > %.2f",
					result.TotalInterest, result.BaselineInterest)
			}
			if result.TotalMonths > result.BaselineMonths {
				t.Errorf("paying more should never take longer: %d > %d", result.TotalMonths, result.BaselineMonths)
			}
			if !testutil.AlmostEqual(result.MoneySaved, result.BaselineInterest-result.TotalInterest, 1e-9) {
				t.Errorf("MoneySaved %.4f does not match the interest difference", result.MoneySaved)
			}
			if result.PayoffDate.Before(rep.Today) {
				t.Errorf("payoff date %s precedes the reference date %s", result.PayoffDate, rep.Today)
			}
		})
	}
}

func TestStrategyLabelOnly(t *testing.T) {
	conf, err := config.LoadConfiguration(examplePlan)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	today, _ := conf.ReferenceDate(time.Now())
	builder := report.NewBuilder(nil)

	avalanche, err := builder.Payoffs(context.Background(), conf.Debt.Accounts, conf.Debt.ExtraPayment, debt.Avalanche, today)
	if err != nil {
		t.Fatalf("Payoffs(avalanche) error = %v", err)
	}
	snowball, err := builder.Payoffs(context.Background(), conf.Debt.Accounts, conf.Debt.ExtraPayment, debt.Snowball, today)
	if err != nil {
		t.Fatalf("Payoffs(snowball) error = %v", err)
	}

	for i := range avalanche {
		a, s := avalanche[i], snowball[i]
		a.Strategy, s.Strategy = "", ""
		if a != s {
			t.Errorf("strategy changed the numbers for %s:\n%+v\n%+v", a.AccountName, a, s)
		}
	}
}

func TestOutputFormats(t *testing.T) {
	_, rep := buildExample(t)

	var pretty bytes.Buffer
	if err := output.Write(&pretty, "pretty", rep); err != nil {
		t.Fatalf("pretty output error = %v", err)
	}
	for _, fragment := range []string{
		"--- Payoff for account Rewards card (avalanche) ---",
		"--- Subscriptions ---",
		"Monthly total: $294.35",
		"Yearly total:  $3,534.63",
		"Dining out | $200.00 | $230.95 | $-30.95 | OVER",
	} {
		if !strings.Contains(pretty.String(), fragment) {
			t.Errorf("pretty output missing %q", fragment)
		}
	}

	var csvOut bytes.Buffer
	if err := output.Write(&csvOut, "csv", rep); err != nil {
		t.Fatalf("csv output error = %v", err)
	}
	records, err := csv.NewReader(&csvOut).ReadAll()
	if err != nil {
		t.Fatalf("csv output is not valid CSV: %v", err)
	}
	// 10 metrics per account, 2 subscription totals, 3 per budget
	// category plus 3 budget totals, and the header.
	if expected := 1 + 3*10 + 2 + 4*3 + 3; len(records) != expected {
		t.Errorf("csv output has %d records, expected %d", len(records), expected)
	}
}
