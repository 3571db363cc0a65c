package fraud_test

import (
	"testing"
	"time"

	"github.com/communitybank/corebank/pkg/currency"
	"github.com/communitybank/corebank/pkg/domain/account"
	"github.com/communitybank/corebank/pkg/fraud"
	"github.com/communitybank/corebank/pkg/money"
	"github.com/stretchr/testify/require"
)

var opened = time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)

func build(t *testing.T, v account.Variant, opening float64) *account.Account {
	t.Helper()
	b := account.New().
		WithID("ACCT00010000").
		WithCustomerID("CUST11111111").
		WithVariant(v).
		WithOpeningBalance(money.Must(opening, currency.USD)).
		WithCreatedAt(opened)
	if v == account.Business {
		b = b.WithBusinessDetails("Acme Corp", "TAX-42")
	}
	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func TestSuspicious(t *testing.T) {
	t.Parallel()
	d := fraud.NewDetector()
	// Two days after opening, so the initial deposit is outside the
	// trailing-hour activity window.
	now := opened.AddDate(0, 0, 2)

	t.Run("large share of balance", func(t *testing.T) {
		a := build(t, account.Savings, 1000)
		require.True(t, d.Suspicious(a, money.Must(850, currency.USD), now))
		require.False(t, d.Suspicious(a, money.Must(700, currency.USD), now))
	})

	t.Run("near the daily limit", func(t *testing.T) {
		a := build(t, account.Business, 100_000)
		require.True(t, d.Suspicious(a, money.Must(46_000, currency.USD), now))
		require.False(t, d.Suspicious(a, money.Must(44_000, currency.USD), now))
	})

	t.Run("high trailing hour activity", func(t *testing.T) {
		a := build(t, account.Savings, 20_000)
		_, err := a.Deposit(money.Must(2_600, currency.USD), "burst", now.Add(-30*time.Minute))
		require.NoError(t, err)
		// 2600 in the last hour is above half the 5000 daily limit, so even
		// a small transfer is flagged.
		require.True(t, d.Suspicious(a, money.Must(100, currency.USD), now))
	})

	t.Run("quiet account passes", func(t *testing.T) {
		a := build(t, account.Savings, 20_000)
		require.False(t, d.Suspicious(a, money.Must(100, currency.USD), now))
	})
}
