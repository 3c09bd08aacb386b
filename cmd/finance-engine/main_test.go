package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlan = `
logging:
  level: error
today: "2024-03-15"
debt:
  strategy: snowball
  extraPayment: 100
  accounts:
    - name: Store card
      balance: 1000
      interestRate: 0
      minimumPayment: 100
subscriptions:
  items:
    - name: Streaming
      amount: 15.99
      billingCycle: monthly
    - name: Magazine
      amount: 30
      billingCycle: quarterly
budget:
  categories:
    - name: Dining
      amount: 50
      type: expense
  transactions:
    - category: Dining
      amount: 50.01
      type: expense
`

func writePlan(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testPlan), 0600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "finance-engine version "+version)
}

func TestPayoffCommand(t *testing.T) {
	out, err := execute(t, "payoff", "--name", "Store card", "--balance", "1000", "--minimum", "100", "--today", "2024-03-15")
	require.NoError(t, err)

	assert.Contains(t, out, "--- Payoff for account Store card (avalanche) ---")
	assert.Contains(t, out, "Payoff date:       2025-01-15 (10 months)")
}

func TestPayoffCommandCsvSchedule(t *testing.T) {
	out, err := execute(t, "payoff", "--balance", "1000", "--minimum", "100", "--extra", "400",
		"--strategy", "snowball", "--today", "2024-03-15", "-o", "csv", "--schedule")
	require.NoError(t, err)

	assert.Contains(t, out, "payoff,account,months,2\n")
	assert.Contains(t, out, "payoff,account,payoffDate,2024-05-15\n")
	assert.Contains(t, out, "month,payment,interest,principal,balance\n")
	assert.Contains(t, out, "2,500.00,0.00,500.00,0.00\n")
}

func TestPayoffCommandTerm(t *testing.T) {
	out, err := execute(t, "payoff", "--name", "Store card", "--balance", "1200", "--minimum", "100",
		"--term", "24", "--today", "2024-03-15")
	require.NoError(t, err)
	assert.Contains(t, out, "Payment to clear Store card in 24 months: $50.00")

	out, err = execute(t, "payoff", "--balance", "1200", "--minimum", "100", "--term", "12",
		"--today", "2024-03-15", "-o", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "payoff,account,termMonths,12\n")
	assert.Contains(t, out, "payoff,account,termPayment,100.00\n")
}

func TestPayoffCommandErrors(t *testing.T) {
	tests := map[string][]string{
		"missing minimum": {"payoff", "--balance", "1000"},
		"bad strategy":    {"payoff", "--balance", "1000", "--minimum", "100", "--strategy", "tsunami"},
		"negative extra":  {"payoff", "--balance", "1000", "--minimum", "100", "--extra", "-5"},
		"bad format":      {"payoff", "--balance", "1000", "--minimum", "100", "-o", "xml"},
		"bad today":       {"payoff", "--balance", "1000", "--minimum", "100", "--today", "tomorrow"},
		"negative term":   {"payoff", "--balance", "1000", "--minimum", "100", "--term", "-3"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestReportCommand(t *testing.T) {
	plan := writePlan(t)

	out, err := execute(t, "report", "--config", plan)
	require.NoError(t, err)

	assert.Contains(t, out, "--- Payoff for account Store card (snowball) ---")
	assert.Contains(t, out, "Payoff date:       2024-08-15 (5 months)")
	assert.Contains(t, out, "Monthly total: $15.99")
	assert.Contains(t, out, "Ignored (unknown billing cycle): Magazine")
	assert.Contains(t, out, "Dining | $50.00 | $50.01 | $-0.01 | OVER")
}

func TestReportCommandTodayOverride(t *testing.T) {
	plan := writePlan(t)

	out, err := execute(t, "report", "--config", plan, "--today", "2024-01-31", "-o", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "payoff,Store card,payoffDate,2024-06-30\n")
}

func TestNormalizeCommand(t *testing.T) {
	plan := writePlan(t)

	out, err := execute(t, "normalize", "--config", plan, "-o", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "subscriptions,,totalMonthly,15.99\n")
	assert.Contains(t, out, "subscriptions,Magazine,ignored,true\n")

	_, err = execute(t, "normalize", "--config", plan, "--strict")
	assert.Error(t, err)
}

func TestBudgetCommand(t *testing.T) {
	plan := writePlan(t)

	out, err := execute(t, "budget", "--config", plan, "-o", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "budget,Dining,overBudget,true\n")
	assert.NotContains(t, out, "payoff,")
}

func TestMissingPlan(t *testing.T) {
	_, err := execute(t, "report", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestServe(t *testing.T) {
	dir := t.TempDir()
	opts := &rootOptions{
		logLevel: "error",
		now:      func() time.Time { return time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC) },
	}
	so := &serveOptions{
		serverConfig: filepath.Join(dir, "missing.yaml"),
		envFile:      filepath.Join(dir, "missing.env"),
		address:      "127.0.0.1:0",
	}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, opts, so, ready)
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Post("http://"+addr+"/api/debt/payoff", "application/json",
		strings.NewReader(`{"account": {"balance": 1000, "minimumPayment": 100}}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"payoffDate":"2025-01-15"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FINANCE_ENGINE_ADDRESS=127.0.0.1:0\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("FINANCE_ENGINE_ADDRESS") })

	opts := &rootOptions{logLevel: "error", now: time.Now}
	so := &serveOptions{serverConfig: filepath.Join(dir, "missing.yaml"), envFile: envFile}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, opts, so, ready)
	}()

	select {
	case addr := <-ready:
		assert.True(t, strings.HasPrefix(addr, "127.0.0.1:"), "address should come from the env file, got %s", addr)
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	cancel()
	assert.NoError(t, <-done)
}
