package bank_test

import (
	"sync"
	"testing"
	"time"

	"github.com/communitybank/corebank/pkg/currency"
	"github.com/communitybank/corebank/pkg/domain"
	"github.com/communitybank/corebank/pkg/domain/account"
	"github.com/communitybank/corebank/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer(t *testing.T) {
	t.Parallel()
	svc, clock := newTestBank(t)
	id := registerCustomer(t, svc, "transfer@example.com")
	src := openAccount(t, svc, id, account.Checking, 2000)
	dst := openAccount(t, svc, id, account.Checking, 2000)

	// Leave the opening deposits outside the fraud detector's activity window.
	clock.Set(baseTime.Add(2 * time.Hour))

	require.NoError(t, svc.Transfer(src, dst, money.Must(1000, currency.USD), "rent split"))

	assert.Equal(t, int64(100000), mustBalance(t, svc, src))
	assert.Equal(t, int64(300000), mustBalance(t, svc, dst))

	srcAcct, err := svc.Account(src)
	require.NoError(t, err)
	dstAcct, err := svc.Account(dst)
	require.NoError(t, err)

	srcTxs := srcAcct.Transactions()
	dstTxs := dstAcct.Transactions()
	out := srcTxs[len(srcTxs)-1]
	in := dstTxs[len(dstTxs)-1]

	assert.Equal(t, account.TxTransferOut, out.Kind)
	assert.Equal(t, account.TxTransferIn, in.Kind)
	assert.Equal(t, dst, out.RelatedID)
	assert.Equal(t, src, in.RelatedID)
	assert.Equal(t, "rent split", out.Description)
	assert.NotEqual(t, out.Reference, in.Reference)
}

func TestTransferRejections(t *testing.T) {
	t.Parallel()
	svc, clock := newTestBank(t)
	id := registerCustomer(t, svc, "reject@example.com")
	src := openAccount(t, svc, id, account.Checking, 2000)
	dst := openAccount(t, svc, id, account.Checking, 2000)
	clock.Set(baseTime.Add(2 * time.Hour))

	t.Run("same account", func(t *testing.T) {
		err := svc.Transfer(src, src, money.Must(100, currency.USD), "")
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown destination", func(t *testing.T) {
		err := svc.Transfer(src, "ACCT99999999", money.Must(100, currency.USD), "")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("fraud flag leaves state untouched and records an alert", func(t *testing.T) {
		srcBefore := mustBalance(t, svc, src)
		dstBefore := mustBalance(t, svc, dst)
		srcAcct, err := svc.Account(src)
		require.NoError(t, err)
		entriesBefore := len(srcAcct.Transactions())

		// 85% of the source balance trips the balance-share rule.
		amount := money.Must(0.85*float64(srcBefore)/100, currency.USD)
		err = svc.Transfer(src, dst, amount, "")
		require.ErrorIs(t, err, domain.ErrFraudSuspicion)

		assert.Equal(t, srcBefore, mustBalance(t, svc, src))
		assert.Equal(t, dstBefore, mustBalance(t, svc, dst))
		assert.Len(t, srcAcct.Transactions(), entriesBefore)

		alerts := svc.FraudAlerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, src, alerts[0].FromAccountID)
		assert.Equal(t, dst, alerts[0].ToAccountID)
	})

	t.Run("insufficient funds leaves both ledgers untouched", func(t *testing.T) {
		// Above the checking overdraft floor but under every fraud threshold:
		// use a fresh pair so trailing-hour activity stays quiet.
		poor := openAccount(t, svc, id, account.Savings, 600)
		rich := openAccount(t, svc, id, account.Savings, 5000)
		clock.Set(clock.Now().Add(2 * time.Hour))

		err := svc.Transfer(poor, rich, money.Must(400, currency.USD), "")
		require.ErrorIs(t, err, domain.ErrLimitExceeded)
		assert.Equal(t, int64(60000), mustBalance(t, svc, poor))
		assert.Equal(t, int64(500000), mustBalance(t, svc, rich))
	})
}

// TestConcurrentOppositeTransfers drives opposite-direction transfers from
// multiple goroutines. Under id-ordered lock acquisition this completes and
// conserves the combined balance; source-then-destination ordering would
// deadlock.
func TestConcurrentOppositeTransfers(t *testing.T) {
	t.Parallel()
	svc, clock := newTestBank(t)
	id := registerCustomer(t, svc, "concurrent@example.com")
	a := openAccount(t, svc, id, account.Business, 100000)
	b := openAccount(t, svc, id, account.Business, 100000)
	clock.Set(baseTime.Add(2 * time.Hour))

	const (
		workers   = 4
		transfers = 50
	)
	amount := money.Must(10, currency.USD)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		from, to := a, b
		if w%2 == 1 {
			from, to = b, a
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < transfers; i++ {
				assert.NoError(t, svc.Transfer(from, to, amount, "ping-pong"))
			}
		}()
	}
	wg.Wait()

	total := mustBalance(t, svc, a) + mustBalance(t, svc, b)
	assert.Equal(t, int64(20000000), total, "transfers must conserve the combined balance")
	// Equal traffic in both directions returns each account to its start.
	assert.Equal(t, int64(10000000), mustBalance(t, svc, a))
	assert.Empty(t, svc.FraudAlerts())
}

// TestConcurrentDepositsDuringTransfers races deposits into the source
// account against transfers out of it. The fraud heuristic walks the source
// ledger, so it must run under the source lock; run with -race to catch an
// unsynchronized read sneaking back in.
func TestConcurrentDepositsDuringTransfers(t *testing.T) {
	t.Parallel()
	svc, clock := newTestBank(t)
	id := registerCustomer(t, svc, "racing@example.com")
	src := openAccount(t, svc, id, account.Business, 100000)
	dst := openAccount(t, svc, id, account.Business, 100000)
	clock.Set(baseTime.Add(2 * time.Hour))

	const ops = 50
	amount := money.Must(10, currency.USD)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < ops; i++ {
			_, err := svc.Deposit(src, amount, "drip")
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < ops; i++ {
			assert.NoError(t, svc.Transfer(src, dst, amount, "drain"))
		}
	}()
	wg.Wait()

	// Deposits and outgoing transfers cancel out on the source.
	assert.Equal(t, int64(10000000), mustBalance(t, svc, src))
	assert.Equal(t, int64(10050000), mustBalance(t, svc, dst))
	assert.Empty(t, svc.FraudAlerts())
}
