package recurring

import (
	"math"
	"testing"

	"github.com/iwvelando/finance-engine/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name            string
		items           []Item
		expectedMonthly float64
		expectedYearly  float64
		expectedIgnored []string
	}{
		{
			name:            "Yearly round trip",
			items:           []Item{{Amount: 12, BillingCycle: Yearly}},
			expectedMonthly: 1.0,
			expectedYearly:  12,
		},
		{
			name:            "Weekly uses average weeks per month",
			items:           []Item{{Amount: 10, BillingCycle: Weekly}},
			expectedMonthly: 43.3,
			expectedYearly:  520,
		},
		{
			name:            "Monthly",
			items:           []Item{{Amount: 15.99, BillingCycle: Monthly}},
			expectedMonthly: 15.99,
			expectedYearly:  191.88,
		},
		{
			name: "Mixed cadences",
			items: []Item{
				{Name: "Streaming", Amount: 15.99, BillingCycle: Monthly},
				{Name: "Domain", Amount: 120, BillingCycle: Yearly},
				{Name: "Meal kit", Amount: 60, BillingCycle: Weekly},
			},
			expectedMonthly: 15.99 + 10 + 259.8,
			expectedYearly:  191.88 + 120 + 3120,
		},
		{
			name: "Unknown cadence ignored",
			items: []Item{
				{Name: "Gym", Amount: 40, BillingCycle: Monthly},
				{Name: "Magazine", Amount: 30, BillingCycle: "quarterly"},
				{Amount: 5, BillingCycle: "daily"},
			},
			expectedMonthly: 40,
			expectedYearly:  480,
			expectedIgnored: []string{"Magazine", "item 2"},
		},
		{
			name:            "Cadence matching ignores case and whitespace",
			items:           []Item{{Amount: 24, BillingCycle: " YEARLY "}},
			expectedMonthly: 2,
			expectedYearly:  24,
		},
		{
			name:            "Zero amount",
			items:           []Item{{Amount: 0, BillingCycle: Weekly}},
			expectedMonthly: 0,
			expectedYearly:  0,
		},
		{
			name:            "Nil items",
			items:           nil,
			expectedMonthly: 0,
			expectedYearly:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := Normalize(tt.items)
			require.NoError(t, err)

			assert.InDelta(t, tt.expectedMonthly, totals.TotalMonthly, 1e-9)
			assert.InDelta(t, tt.expectedYearly, totals.TotalYearly, 1e-9)
			assert.Equal(t, tt.expectedIgnored, totals.Ignored)
		})
	}
}

func TestNormalizeStrictRejectsUnknownCycle(t *testing.T) {
	items := []Item{
		{Name: "Gym", Amount: 40, BillingCycle: Monthly},
		{Name: "Magazine", Amount: 30, BillingCycle: "quarterly"},
	}

	_, err := NormalizeStrict(items)
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))
	assert.Contains(t, err.Error(), "items[1].billingCycle")

	totals, err := NormalizeStrict(items[:1])
	require.NoError(t, err)
	assert.Equal(t, 40.0, totals.TotalMonthly)
}

func TestNormalizeRejectsInvalidAmounts(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{"Negative", -9.99},
		{"NaN", math.NaN()},
		{"Infinite", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]Item{{Amount: tt.amount, BillingCycle: Monthly}})
			require.Error(t, err)
			assert.True(t, validation.IsValidationError(err))
		})
	}
}

func TestEquivalents(t *testing.T) {
	monthly, yearly, ok := Equivalents(100, Monthly)
	assert.True(t, ok)
	assert.Equal(t, 100.0, monthly)
	assert.Equal(t, 1200.0, yearly)

	_, _, ok = Equivalents(100, BillingCycle("fortnightly"))
	assert.False(t, ok)
}

func TestBillingCycleKnown(t *testing.T) {
	assert.True(t, Monthly.Known())
	assert.True(t, Yearly.Known())
	assert.True(t, Weekly.Known())
	assert.False(t, BillingCycle("Monthly").Known())
	assert.True(t, ParseBillingCycle("Monthly").Known())
}

func TestNormalizeMatchesCycleInAnyCase(t *testing.T) {
	items := []Item{
		{Name: "Streaming", Amount: 10, BillingCycle: "Monthly"},
		{Name: "Backup", Amount: 120, BillingCycle: " YEARLY "},
		{Name: "Newspaper", Amount: 30, BillingCycle: "Quarterly"},
	}

	for _, normalize := range []func([]Item) (Totals, error){Normalize, NormalizeStrict} {
		totals, err := normalize(items[:2])
		require.NoError(t, err)
		assert.InDelta(t, 20.0, totals.TotalMonthly, 1e-9)
		assert.InDelta(t, 240.0, totals.TotalYearly, 1e-9)
	}

	totals, err := Normalize(items)
	require.NoError(t, err)
	assert.Equal(t, []string{"Newspaper"}, totals.Ignored)
}
