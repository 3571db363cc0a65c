package bank

import (
	"time"

	"github.com/communitybank/corebank/pkg/currency"
	"github.com/communitybank/corebank/pkg/domain/account"
	"github.com/communitybank/corebank/pkg/domain/loan"
	"github.com/communitybank/corebank/pkg/money"
	"github.com/shopspring/decimal"
)

// Statement is an account's ledger over a date range plus credit and debit
// totals. Credits cover deposits, incoming transfers and interest; debits
// cover withdrawals, outgoing transfers and fees. Loan disbursements and
// reversals appear in the entries but are counted in neither total.
type Statement struct {
	AccountID    string
	CustomerName string
	Variant      account.Variant
	Start        time.Time
	End          time.Time
	Balance      money.Money
	Entries      []account.Transaction
	TotalCredits money.Money
	TotalDebits  money.Money
}

// Statement builds the statement for an account over [start, end], dates
// inclusive.
func (s *Service) Statement(accountID string, start, end time.Time) (*Statement, error) {
	a, err := s.Account(accountID)
	if err != nil {
		return nil, err
	}
	c, err := s.Customer(a.CustomerID)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(accountID)
	entries := a.TransactionHistory(start, end)
	balance := a.Balance()
	s.locks.Unlock(accountID)

	var credits, debits int64
	for _, e := range entries {
		switch e.Kind {
		case account.TxDeposit, account.TxTransferIn, account.TxInterest:
			credits += e.Amount.Amount()
		case account.TxWithdrawal, account.TxTransferOut, account.TxFee:
			debits += e.Amount.Amount()
		}
	}

	totalCredits, err := money.FromSmallestUnit(credits, a.Currency())
	if err != nil {
		return nil, err
	}
	totalDebits, err := money.FromSmallestUnit(debits, a.Currency())
	if err != nil {
		return nil, err
	}

	return &Statement{
		AccountID:    accountID,
		CustomerName: c.FullName(),
		Variant:      a.Variant,
		Start:        start,
		End:          end,
		Balance:      balance,
		Entries:      entries,
		TotalCredits: totalCredits,
		TotalDebits:  totalDebits,
	}, nil
}

// Summary is a point-in-time aggregate over the whole registry.
type Summary struct {
	BankName       string
	TotalCustomers int
	TotalAccounts  int

	AccountsByVariant map[account.Variant]int
	AccountsByStatus  map[account.Status]int

	// ActiveBalances sums active-account balances per currency.
	ActiveBalances map[currency.Code]money.Money

	TotalLoans      int
	ActiveLoans     int
	OutstandingDebt decimal.Decimal

	FraudAlerts int
}

// Summary aggregates counts and balances across all directories. Each entity
// is read under its own lock; the aggregate spans no single instant, so
// concurrent mutations make the result a consistent-enough snapshot, not an
// exact one.
func (s *Service) Summary() *Summary {
	sum := &Summary{
		BankName:          s.name,
		AccountsByVariant: make(map[account.Variant]int),
		AccountsByStatus:  make(map[account.Status]int),
		ActiveBalances:    make(map[currency.Code]money.Money),
		OutstandingDebt:   decimal.Zero,
		FraudAlerts:       s.alerts.count(),
	}

	sum.TotalCustomers = len(s.store.Customers())

	for _, a := range s.store.Accounts() {
		s.locks.Lock(a.ID)
		snap := a.Snapshot()
		s.locks.Unlock(a.ID)

		sum.TotalAccounts++
		sum.AccountsByVariant[snap.Variant]++
		sum.AccountsByStatus[snap.Status]++
		if snap.Status == account.StatusActive {
			code := snap.Balance.Currency()
			total, ok := sum.ActiveBalances[code]
			if !ok {
				total = money.Zero(code)
			}
			if next, err := total.Add(snap.Balance); err == nil {
				sum.ActiveBalances[code] = next
			}
		}
	}

	for _, l := range s.store.Loans() {
		s.locks.Lock(l.ID)
		status, remaining := l.Status, l.Remaining
		s.locks.Unlock(l.ID)

		sum.TotalLoans++
		if status == loan.StatusActive {
			sum.ActiveLoans++
			sum.OutstandingDebt = sum.OutstandingDebt.Add(remaining)
		}
	}

	return sum
}
