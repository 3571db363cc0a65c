package bank_test

import (
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/communitybank/corebank/pkg/currency"
	"github.com/communitybank/corebank/pkg/domain"
	"github.com/communitybank/corebank/pkg/domain/account"
	"github.com/communitybank/corebank/pkg/money"
	"github.com/communitybank/corebank/pkg/service/bank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs before any tests and applies globally for all tests in the package.
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

var baseTime = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

// plainCreds avoids bcrypt cost in tests; the bank treats tokens as opaque
// either way.
type plainCreds struct{}

func (plainCreds) Hash(password string) (string, error) { return "token:" + password, nil }
func (plainCreds) Verify(password, token string) bool   { return token == "token:"+password }

// testClock is a settable time source shared with the service under test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{t: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newTestBank(t *testing.T) (*bank.Service, *testClock) {
	t.Helper()
	clock := newTestClock(baseTime)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return bank.New("Community Trust Bank", plainCreds{}, logger, bank.WithClock(clock.Now)), clock
}

func registerCustomer(t *testing.T, svc *bank.Service, email string) string {
	t.Helper()
	c, err := svc.RegisterCustomer(bank.RegisterCustomerParams{
		FirstName:   "Ada",
		LastName:    "Nwosu",
		Email:       email,
		Phone:       "+15550100",
		Address:     "12 Harbor Lane",
		DateOfBirth: time.Date(1990, time.March, 2, 0, 0, 0, 0, time.UTC),
		Password:    "s3cret-pw",
	})
	require.NoError(t, err)
	return c.ID
}

func openAccount(t *testing.T, svc *bank.Service, customerID string, v account.Variant, opening float64) string {
	t.Helper()
	p := bank.OpenAccountParams{
		CustomerID:     customerID,
		Variant:        v,
		OpeningBalance: money.Must(opening, currency.USD),
		Password:       "s3cret-pw",
	}
	if v == account.Business {
		p.BusinessName = "Nwosu Imports"
		p.TaxID = "TAX-4411"
	}
	a, err := svc.OpenAccount(p)
	require.NoError(t, err)
	return a.ID
}

func TestRegisterCustomer(t *testing.T) {
	t.Parallel()
	svc, _ := newTestBank(t)

	t.Run("assigns id and stores credential token", func(t *testing.T) {
		id := registerCustomer(t, svc, "ada@example.com")
		c, err := svc.Customer(id)
		require.NoError(t, err)
		assert.Equal(t, "Ada Nwosu", c.FullName())
		assert.NotEmpty(t, c.CredentialToken)
		assert.NotEqual(t, "s3cret-pw", c.CredentialToken)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		registerCustomer(t, svc, "dupe@example.com")
		_, err := svc.RegisterCustomer(bank.RegisterCustomerParams{
			FirstName: "Other", LastName: "Person", Email: "dupe@example.com", Password: "pw",
		})
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	svc, _ := newTestBank(t)
	id := registerCustomer(t, svc, "auth@example.com")

	t.Run("accepts correct password", func(t *testing.T) {
		c, err := svc.Authenticate(id, "s3cret-pw")
		require.NoError(t, err)
		assert.Equal(t, id, c.ID)
	})

	t.Run("accepts login by email", func(t *testing.T) {
		c, err := svc.AuthenticateByEmail("auth@example.com", "s3cret-pw")
		require.NoError(t, err)
		assert.Equal(t, id, c.ID)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(id, "wrong")
		require.ErrorIs(t, err, bank.ErrInvalidCredentials)
	})

	t.Run("rejects unknown customer without leaking existence", func(t *testing.T) {
		_, err := svc.Authenticate("CUST00000000", "s3cret-pw")
		require.ErrorIs(t, err, bank.ErrInvalidCredentials)
	})

	t.Run("change password swaps the token", func(t *testing.T) {
		id := registerCustomer(t, svc, "rotate@example.com")
		require.NoError(t, svc.ChangePassword(id, "s3cret-pw", "new-pw"))
		_, err := svc.Authenticate(id, "s3cret-pw")
		require.ErrorIs(t, err, bank.ErrInvalidCredentials)
		_, err = svc.Authenticate(id, "new-pw")
		require.NoError(t, err)
	})
}

func TestUpdateCustomerProfile(t *testing.T) {
	t.Parallel()
	svc, _ := newTestBank(t)
	id := registerCustomer(t, svc, "before@example.com")

	t.Run("updates contact fields, keeps the rest", func(t *testing.T) {
		c, err := svc.UpdateCustomerProfile(id, bank.UpdateProfileParams{
			Email: "after@example.com",
			Phone: "+15550199",
		})
		require.NoError(t, err)
		assert.Equal(t, "after@example.com", c.Email)
		assert.Equal(t, "+15550199", c.Phone)
		assert.Equal(t, "12 Harbor Lane", c.Address)
		assert.Equal(t, "Ada Nwosu", c.FullName())

		_, err = svc.CustomerByEmail("before@example.com")
		require.ErrorIs(t, err, domain.ErrNotFound)
		found, err := svc.CustomerByEmail("after@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, found.ID)
	})

	t.Run("credential survives the update", func(t *testing.T) {
		_, err := svc.Authenticate(id, "s3cret-pw")
		require.NoError(t, err)
	})

	t.Run("rejects another customer's email", func(t *testing.T) {
		other := registerCustomer(t, svc, "taken@example.com")
		_, err := svc.UpdateCustomerProfile(other, bank.UpdateProfileParams{Email: "after@example.com"})
		require.ErrorIs(t, err, bank.ErrEmailAlreadyInUse)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := svc.UpdateCustomerProfile("CUST00000000", bank.UpdateProfileParams{Phone: "+15550000"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestOpenAccount(t *testing.T) {
	t.Parallel()
	svc, _ := newTestBank(t)
	id := registerCustomer(t, svc, "open@example.com")

	t.Run("savings gets the default rate", func(t *testing.T) {
		a, err := svc.OpenAccount(bank.OpenAccountParams{
			CustomerID:     id,
			Variant:        account.Savings,
			OpeningBalance: money.Must(1000, currency.USD),
			Password:       "s3cret-pw",
		})
		require.NoError(t, err)
		assert.InDelta(t, 3.5, a.InterestRate, 0.0001)
		assert.Equal(t, account.StatusActive, a.Status)
	})

	t.Run("requires the customer's password", func(t *testing.T) {
		_, err := svc.OpenAccount(bank.OpenAccountParams{
			CustomerID:     id,
			Variant:        account.Checking,
			OpeningBalance: money.Must(500, currency.USD),
			Password:       "wrong",
		})
		require.ErrorIs(t, err, bank.ErrInvalidCredentials)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := svc.OpenAccount(bank.OpenAccountParams{
			CustomerID: "CUSTFFFFFFFF",
			Variant:    account.Savings,
			Password:   "s3cret-pw",
		})
		require.ErrorIs(t, err, bank.ErrInvalidCredentials)
	})

	t.Run("account ids are sequential", func(t *testing.T) {
		first := openAccount(t, svc, id, account.Checking, 500)
		second := openAccount(t, svc, id, account.Checking, 500)
		assert.Less(t, first, second)
	})

	t.Run("customer accounts lists only the owner's", func(t *testing.T) {
		other := registerCustomer(t, svc, "other@example.com")
		mine := openAccount(t, svc, other, account.Savings, 900)
		ids := make(map[string]bool)
		for _, a := range svc.CustomerAccounts(other) {
			ids[a.ID] = true
		}
		assert.True(t, ids[mine])
		assert.Len(t, ids, 1)
	})
}

func TestDepositWithdraw(t *testing.T) {
	t.Parallel()
	svc, _ := newTestBank(t)
	id := registerCustomer(t, svc, "flow@example.com")
	acctID := openAccount(t, svc, id, account.Checking, 1000)

	deposits := []float64{250, 75.25, 10}
	withdrawals := []float64{100, 35.25}

	for _, d := range deposits {
		_, err := svc.Deposit(acctID, money.Must(d, currency.USD), "payroll")
		require.NoError(t, err)
	}
	for _, w := range withdrawals {
		_, err := svc.Withdraw(acctID, money.Must(w, currency.USD), "groceries")
		require.NoError(t, err)
	}

	a, err := svc.Account(acctID)
	require.NoError(t, err)
	// 1000 + 335.25 - 135.25
	assert.Equal(t, int64(120000), a.Balance().Amount())

	txs := a.Transactions()
	require.Len(t, txs, 1+len(deposits)+len(withdrawals))
	for i := 1; i < len(txs); i++ {
		assert.Equal(t, txs[i-1].ID+1, txs[i].ID)
	}
	assert.Equal(t, a.Balance(), txs[len(txs)-1].BalanceAfter)

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.Deposit("ACCT99999999", money.Must(10, currency.USD), "")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAccountLifecycleOps(t *testing.T) {
	t.Parallel()
	svc, _ := newTestBank(t)
	id := registerCustomer(t, svc, "life@example.com")
	acctID := openAccount(t, svc, id, account.Savings, 600)

	require.NoError(t, svc.FreezeAccount(acctID))
	_, err := svc.Deposit(acctID, money.Must(10, currency.USD), "")
	require.ErrorIs(t, err, domain.ErrState)

	require.NoError(t, svc.UnfreezeAccount(acctID))
	_, err = svc.Deposit(acctID, money.Must(10, currency.USD), "")
	require.NoError(t, err)

	require.NoError(t, svc.SuspendAccount(acctID))
	_, err = svc.Withdraw(acctID, money.Must(10, currency.USD), "")
	require.NoError(t, err, "suspension must not block transactions")

	err = svc.CloseAccount(acctID)
	require.ErrorIs(t, err, domain.ErrState, "close requires a zero balance")
}

func TestReverseTransaction(t *testing.T) {
	t.Parallel()
	svc, _ := newTestBank(t)
	id := registerCustomer(t, svc, "reverse@example.com")
	acctID := openAccount(t, svc, id, account.Checking, 500)

	tx, err := svc.Deposit(acctID, money.Must(200, currency.USD), "mistaken credit")
	require.NoError(t, err)

	offset, err := svc.ReverseTransaction(acctID, tx.ID, "duplicate posting")
	require.NoError(t, err)
	assert.Equal(t, account.TxReversal, offset.Kind)
	assert.Equal(t, tx.Reference, offset.RelatedID)

	a, err := svc.Account(acctID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), a.Balance().Amount(), "offset restores the prior balance")

	orig, err := a.FindTransaction(tx.ID)
	require.NoError(t, err)
	assert.True(t, orig.Reversed)

	t.Run("second reversal rejected", func(t *testing.T) {
		_, err := svc.ReverseTransaction(acctID, tx.ID, "again")
		require.ErrorIs(t, err, domain.ErrState)
	})

	t.Run("reversing a debit restores funds", func(t *testing.T) {
		wtx, err := svc.Withdraw(acctID, money.Must(50, currency.USD), "")
		require.NoError(t, err)
		before := mustBalance(t, svc, acctID)
		_, err = svc.ReverseTransaction(acctID, wtx.ID, "")
		require.NoError(t, err)
		assert.Equal(t, before+5000, mustBalance(t, svc, acctID))
	})
}

func mustBalance(t *testing.T, svc *bank.Service, acctID string) int64 {
	t.Helper()
	a, err := svc.Account(acctID)
	require.NoError(t, err)
	return a.Balance().Amount()
}

func TestSummary(t *testing.T) {
	t.Parallel()
	svc, _ := newTestBank(t)
	id := registerCustomer(t, svc, "summary@example.com")
	openAccount(t, svc, id, account.Savings, 1000)
	openAccount(t, svc, id, account.Checking, 500)
	frozen := openAccount(t, svc, id, account.Business, 10000)
	require.NoError(t, svc.FreezeAccount(frozen))

	sum := svc.Summary()
	assert.Equal(t, "Community Trust Bank", sum.BankName)
	assert.Equal(t, 1, sum.TotalCustomers)
	assert.Equal(t, 3, sum.TotalAccounts)
	assert.Equal(t, 1, sum.AccountsByVariant[account.Savings])
	assert.Equal(t, 1, sum.AccountsByVariant[account.Business])
	assert.Equal(t, 2, sum.AccountsByStatus[account.StatusActive])
	assert.Equal(t, 1, sum.AccountsByStatus[account.StatusFrozen])
	// Frozen business balance is excluded from the active total.
	assert.Equal(t, int64(150000), sum.ActiveBalances[currency.USD].Amount())
	assert.Zero(t, sum.FraudAlerts)
}

// TestSnapshotsUnderConcurrentMutation reads account snapshots and summaries
// while deposits run. Snapshots are taken under the account lock; run with
// -race to catch an unsynchronized read sneaking back in.
func TestSnapshotsUnderConcurrentMutation(t *testing.T) {
	t.Parallel()
	svc, _ := newTestBank(t)
	id := registerCustomer(t, svc, "snapshot@example.com")
	acctID := openAccount(t, svc, id, account.Business, 100000)

	const ops = 50
	amount := money.Must(10, currency.USD)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < ops; i++ {
			_, err := svc.Deposit(acctID, amount, "drip")
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < ops; i++ {
			snap, err := svc.AccountSnapshot(acctID)
			assert.NoError(t, err)
			assert.Equal(t, account.StatusActive, snap.Status)
			sum := svc.Summary()
			assert.Equal(t, 1, sum.TotalAccounts)
		}
	}()
	wg.Wait()

	snap, err := svc.AccountSnapshot(acctID)
	require.NoError(t, err)
	assert.Equal(t, int64(10050000), snap.Balance.Amount())

	txs, err := svc.AccountTransactions(acctID)
	require.NoError(t, err)
	require.Len(t, txs, 1+ops)
	assert.Equal(t, snap.Balance, txs[len(txs)-1].BalanceAfter)
}

func TestStatement(t *testing.T) {
	t.Parallel()
	svc, clock := newTestBank(t)
	id := registerCustomer(t, svc, "statement@example.com")
	acctID := openAccount(t, svc, id, account.Checking, 1000)

	clock.Set(baseTime.AddDate(0, 0, 1))
	_, err := svc.Deposit(acctID, money.Must(300, currency.USD), "payroll")
	require.NoError(t, err)
	_, err = svc.Withdraw(acctID, money.Must(120, currency.USD), "rent")
	require.NoError(t, err)

	clock.Set(baseTime.AddDate(0, 0, 10))
	_, err = svc.Deposit(acctID, money.Must(40, currency.USD), "refund")
	require.NoError(t, err)

	t.Run("window filters entries and totals", func(t *testing.T) {
		st, err := svc.Statement(acctID, baseTime.AddDate(0, 0, 1), baseTime.AddDate(0, 0, 5))
		require.NoError(t, err)
		assert.Equal(t, "Ada Nwosu", st.CustomerName)
		require.Len(t, st.Entries, 2)
		assert.Equal(t, int64(30000), st.TotalCredits.Amount())
		assert.Equal(t, int64(12000), st.TotalDebits.Amount())
	})

	t.Run("full range includes the opening deposit", func(t *testing.T) {
		st, err := svc.Statement(acctID, baseTime, baseTime.AddDate(0, 1, 0))
		require.NoError(t, err)
		require.Len(t, st.Entries, 4)
		assert.Equal(t, int64(134000), st.TotalCredits.Amount())
		assert.Equal(t, st.Balance.Amount(), st.TotalCredits.Amount()-st.TotalDebits.Amount())
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.Statement("ACCT99999999", baseTime, baseTime)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
