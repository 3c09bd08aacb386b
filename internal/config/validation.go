package config

import (
	"fmt"

	"github.com/iwvelando/finance-engine/pkg/budget"
	"github.com/iwvelando/finance-engine/pkg/debt"
	"github.com/iwvelando/finance-engine/pkg/recurring"
)

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard errors are left to the calculators.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if _, err := c.Strategy(); err != nil {
		warnings = append(warnings, err.Error())
	}

	seen := make(map[string]bool)
	for _, account := range c.Debt.Accounts {
		if seen[account.Name] {
			warnings = append(warnings, fmt.Sprintf("Account '%s' is listed more than once", account.Name))
		}
		seen[account.Name] = true

		interest := account.Balance * debt.MonthlyRate(account.InterestRate)
		if account.Balance > 0 && account.MinimumPayment+c.Debt.ExtraPayment <= interest {
			warnings = append(warnings, fmt.Sprintf(
				"Account '%s' payment of %.2f does not cover monthly interest of %.2f - it will never be paid off",
				account.Name, account.MinimumPayment+c.Debt.ExtraPayment, interest))
		}
	}

	for i, item := range c.Subscriptions.Items {
		if !recurring.ParseBillingCycle(string(item.BillingCycle)).Known() {
			name := item.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			warnings = append(warnings, fmt.Sprintf("Subscription '%s' has unknown billing cycle '%s' and will be ignored",
				name, item.BillingCycle))
		}
	}

	categories := make(map[string]bool)
	for _, category := range c.Budget.Categories {
		categories[category.Name] = true
		if kind := budget.ParseKind(string(category.Type)); kind != budget.Income && kind != budget.Expense {
			warnings = append(warnings, fmt.Sprintf("Budget category '%s' has unknown type '%s'", category.Name, category.Type))
		}
	}
	unmatched := make(map[string]bool)
	for _, transaction := range c.Budget.Transactions {
		if budget.ParseKind(string(transaction.Type)) != budget.Expense {
			continue
		}
		if !categories[transaction.Category] && !unmatched[transaction.Category] {
			unmatched[transaction.Category] = true
			warnings = append(warnings, fmt.Sprintf("Expense category '%s' has no budget - it counts toward total spend only",
				transaction.Category))
		}
	}

	return warnings
}
