// Package account defines the account aggregate: balance, status, variant
// policy and the append-only transaction ledger it owns exclusively.
//
// Invariants:
//   - Every accepted mutation pairs a balance change with exactly one ledger
//     entry whose BalanceAfter equals the balance immediately afterwards.
//   - The currency is fixed at creation.
//   - The monthly accumulator counts only operations that passed validation
//     and resets on the first operation in a new calendar month.
//
// Accounts carry no lock of their own: the registry's lock manager guards
// all mutating calls, and methods document that expectation.
package account

import (
	"fmt"
	"time"

	"github.com/communitybank/corebank/pkg/currency"
	"github.com/communitybank/corebank/pkg/domain"
	"github.com/communitybank/corebank/pkg/money"
)

var (
	// ErrInvalidVariant is returned for an account variant outside the closed set.
	ErrInvalidVariant = fmt.Errorf("%w: invalid account variant", domain.ErrValidation)
	// ErrInvalidAmount is returned when an operation amount is outside (0, max].
	ErrInvalidAmount = fmt.Errorf("%w: amount must be within (0, max]", domain.ErrValidation)
	// ErrAccountFrozen is returned for mutating operations on a frozen account.
	ErrAccountFrozen = fmt.Errorf("%w: account is frozen", domain.ErrState)
	// ErrAccountClosed is returned for mutating operations on a closed account.
	ErrAccountClosed = fmt.Errorf("%w: account is closed", domain.ErrState)
	// ErrInsufficientFunds is returned when the variant sufficiency predicate fails.
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", domain.ErrLimitExceeded)
	// ErrDailyLimitExceeded is returned when the amount exceeds the daily limit.
	ErrDailyLimitExceeded = fmt.Errorf("%w: amount exceeds daily transaction limit", domain.ErrLimitExceeded)
	// ErrMonthlyLimitExceeded is returned when the monthly accumulator would
	// exceed the monthly limit.
	ErrMonthlyLimitExceeded = fmt.Errorf("%w: amount exceeds monthly transaction limit", domain.ErrLimitExceeded)
	// ErrBalanceNotZero is returned when closing an account that still holds funds.
	ErrBalanceNotZero = fmt.Errorf("%w: account balance must be zero to close", domain.ErrState)
	// ErrNotSavings is returned when interest is credited to a non-savings account.
	ErrNotSavings = fmt.Errorf("%w: interest applies to savings accounts only", domain.ErrState)
	// ErrTransactionNotFound is returned when a ledger entry id is unknown.
	ErrTransactionNotFound = fmt.Errorf("%w: transaction", domain.ErrNotFound)
	// ErrAlreadyReversed is returned when the reversed flag is already set.
	ErrAlreadyReversed = fmt.Errorf("%w: transaction already reversed", domain.ErrState)
)

// Status is the lifecycle state of an account. Closed is terminal; Frozen and
// Suspended are reversible to Active.
type Status string

// Account statuses.
const (
	StatusActive    Status = "active"
	StatusFrozen    Status = "frozen"
	StatusSuspended Status = "suspended"
	StatusClosed    Status = "closed"
)

// Account is the aggregate root for a single bank account.
type Account struct {
	ID         string
	CustomerID string
	Variant    Variant
	Status     Status
	CreatedAt  time.Time

	// InterestRate is the annual rate in percent; meaningful for savings only.
	InterestRate float64
	// BusinessName and TaxID are set for business accounts only.
	BusinessName string
	TaxID        string

	balance money.Money
	policy  Policy
	ledger  *Ledger

	// monthlyTotal accumulates accepted operation amounts (smallest unit)
	// within the calendar month of lastTxAt.
	monthlyTotal   int64
	lastTxAt       time.Time
	lastInterestAt time.Time
}

// Builder assembles an account, validating invariants in Build.
type Builder struct {
	id           string
	customerID   string
	variant      Variant
	opening      money.Money
	interestRate float64
	businessName string
	taxID        string
	createdAt    time.Time
}

// New starts an account builder.
func New() *Builder {
	return &Builder{createdAt: time.Now()}
}

// WithID sets the account identifier. Mandatory.
func (b *Builder) WithID(id string) *Builder {
	b.id = id
	return b
}

// WithCustomerID sets the owning customer. Mandatory.
func (b *Builder) WithCustomerID(id string) *Builder {
	b.customerID = id
	return b
}

// WithVariant sets the account variant. Mandatory.
func (b *Builder) WithVariant(v Variant) *Builder {
	b.variant = v
	return b
}

// WithOpeningBalance sets the initial deposit; its currency becomes the
// account currency for life.
func (b *Builder) WithOpeningBalance(m money.Money) *Builder {
	b.opening = m
	return b
}

// WithInterestRate sets the annual interest rate in percent (savings).
func (b *Builder) WithInterestRate(rate float64) *Builder {
	b.interestRate = rate
	return b
}

// WithBusinessDetails sets the business name and tax id (business accounts).
func (b *Builder) WithBusinessDetails(name, taxID string) *Builder {
	b.businessName = name
	b.taxID = taxID
	return b
}

// WithCreatedAt overrides the creation timestamp, primarily for tests.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// Build validates the invariants and returns the account. A positive opening
// balance is recorded as an initial deposit ledger entry.
func (b *Builder) Build() (*Account, error) {
	if !b.variant.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVariant, b.variant)
	}
	if b.id == "" {
		return nil, fmt.Errorf("%w: account id is required", domain.ErrValidation)
	}
	if b.customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", domain.ErrValidation)
	}
	if b.opening.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative", domain.ErrValidation)
	}
	if b.variant == Business && (b.businessName == "" || b.taxID == "") {
		return nil, fmt.Errorf("%w: business name and tax id are required", domain.ErrValidation)
	}
	policy, err := PolicyFor(b.variant, b.opening.Currency())
	if err != nil {
		return nil, err
	}
	a := &Account{
		ID:             b.id,
		CustomerID:     b.customerID,
		Variant:        b.variant,
		Status:         StatusActive,
		CreatedAt:      b.createdAt,
		InterestRate:   b.interestRate,
		BusinessName:   b.businessName,
		TaxID:          b.taxID,
		balance:        money.Zero(b.opening.Currency()),
		policy:         policy,
		ledger:         NewLedger(),
		lastTxAt:       b.createdAt,
		lastInterestAt: b.createdAt,
	}
	if b.opening.IsPositive() {
		a.balance = b.opening
		a.applyEntry(TxDeposit, b.opening, "Initial Deposit", "", b.createdAt)
	}
	return a, nil
}

// Snapshot is a point-in-time copy of an account's mutable state alongside
// its fixed identity fields. Taking one requires the account's exclusive
// lock; the copy itself is safe to read anywhere afterwards.
type Snapshot struct {
	ID           string
	CustomerID   string
	Variant      Variant
	Status       Status
	Balance      money.Money
	InterestRate float64
	BusinessName string
	CreatedAt    time.Time
}

// Snapshot copies the account state. Caller must hold the account's
// exclusive lock.
func (a *Account) Snapshot() Snapshot {
	return Snapshot{
		ID:           a.ID,
		CustomerID:   a.CustomerID,
		Variant:      a.Variant,
		Status:       a.Status,
		Balance:      a.balance,
		InterestRate: a.InterestRate,
		BusinessName: a.BusinessName,
		CreatedAt:    a.CreatedAt,
	}
}

// Balance returns the current balance.
func (a *Account) Balance() money.Money { return a.balance }

// Currency returns the account currency.
func (a *Account) Currency() currency.Code { return a.balance.Currency() }

// Policy returns the variant policy in the account currency.
func (a *Account) Policy() Policy { return a.policy }

// MonthlyTotal returns the rolling monthly accumulator in the smallest unit.
func (a *Account) MonthlyTotal() int64 { return a.monthlyTotal }

// Transactions returns a copy of the full ledger in order.
func (a *Account) Transactions() []Transaction { return a.ledger.All() }

// TransactionHistory returns ledger entries whose timestamp date falls within
// [start, end] inclusive, in ledger order.
func (a *Account) TransactionHistory(start, end time.Time) []Transaction {
	return a.ledger.Between(start, end)
}

// RecentActivityTotal sums entry amounts recorded after the cutoff, in the
// smallest unit. Used by the fraud heuristic; read-only.
func (a *Account) RecentActivityTotal(cutoff time.Time) int64 {
	return a.ledger.TotalSince(cutoff)
}

// Deposit adds funds after running the validation chain (amount, status,
// daily limit, monthly limit). Caller must hold the account's exclusive lock.
func (a *Account) Deposit(amount money.Money, description string, now time.Time) (*Transaction, error) {
	if err := a.validateAmount(amount); err != nil {
		return nil, err
	}
	if err := a.validateStatus(); err != nil {
		return nil, err
	}
	if err := a.validateLimits(amount, now); err != nil {
		return nil, err
	}
	next, err := a.balance.Add(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	a.balance = next
	return a.applyEntry(TxDeposit, amount, description, "", now), nil
}

// Withdraw removes funds after running the full validation chain. Caller must
// hold the account's exclusive lock.
func (a *Account) Withdraw(amount money.Money, description string, now time.Time) (*Transaction, error) {
	if err := a.ValidateWithdraw(amount, now); err != nil {
		return nil, err
	}
	a.balance, _ = a.balance.Subtract(amount)
	return a.applyEntry(TxWithdrawal, amount, description, "", now), nil
}

// ValidateWithdraw runs the withdrawal validation chain without mutating
// state, fail-fast in this order: amount bounds, account status, variant
// sufficiency predicate, daily limit, monthly limit. The transfer protocol
// re-runs it while holding both account locks.
func (a *Account) ValidateWithdraw(amount money.Money, now time.Time) error {
	if err := a.validateAmount(amount); err != nil {
		return err
	}
	if err := a.validateStatus(); err != nil {
		return err
	}
	if !a.policy.CanWithdraw(a.balance, amount) {
		return fmt.Errorf("%w: balance %s, attempted %s, minimum %s",
			ErrInsufficientFunds, a.balance, amount, a.policy.MinimumBalance)
	}
	return a.validateLimits(amount, now)
}

// ApplyCredit adds funds and appends a ledger entry of the given kind,
// bypassing the validation chain. For registry-coordinated operations
// (transfer-in, loan disbursement, reversal offsets) whose checks already
// ran. Caller must hold the account's exclusive lock.
func (a *Account) ApplyCredit(kind TxKind, amount money.Money, description, relatedID string, now time.Time) (*Transaction, error) {
	next, err := a.balance.Add(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	a.balance = next
	return a.applyEntry(kind, amount, description, relatedID, now), nil
}

// ApplyDebit removes funds and appends a ledger entry of the given kind,
// bypassing the validation chain. Caller must hold the account's exclusive
// lock and have validated the operation.
func (a *Account) ApplyDebit(kind TxKind, amount money.Money, description, relatedID string, now time.Time) (*Transaction, error) {
	next, err := a.balance.Subtract(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	a.balance = next
	return a.applyEntry(kind, amount, description, relatedID, now), nil
}

// CreditMonthlyInterest applies one month of interest to a savings account.
// It is a no-op unless the calendar month of the last credit differs from
// now's. Caller must hold the account's exclusive lock.
func (a *Account) CreditMonthlyInterest(now time.Time) (*Transaction, error) {
	if a.Variant != Savings {
		return nil, ErrNotSavings
	}
	if sameMonth(a.lastInterestAt, now) {
		return nil, nil
	}
	interest, err := money.New(a.balance.Float()*(a.InterestRate/100)/12, a.balance.Currency())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if !interest.IsPositive() {
		return nil, nil
	}
	a.balance, _ = a.balance.Add(interest)
	a.lastInterestAt = now
	desc := fmt.Sprintf("Monthly Interest @ %.2f%%", a.InterestRate)
	return a.applyEntry(TxInterest, interest, desc, "", now), nil
}

// ChargeMaintenanceFee deducts the variant's fixed fee if the balance covers
// it; otherwise it is a no-op. There is deliberately no once-per-period
// guard: repeated invocation within a period double-charges, matching the
// documented batch-job contract. Caller must hold the account's exclusive lock.
func (a *Account) ChargeMaintenanceFee(now time.Time) (*Transaction, error) {
	fee := a.policy.MaintenanceFee
	covered, err := a.balance.GreaterThanOrEqual(fee)
	if err != nil || !covered {
		return nil, err
	}
	a.balance, _ = a.balance.Subtract(fee)
	return a.applyEntry(TxFee, fee, "Monthly Maintenance Fee", "", now), nil
}

// Freeze blocks mutating operations until Unfreeze.
func (a *Account) Freeze() error {
	if a.Status == StatusClosed {
		return ErrAccountClosed
	}
	a.Status = StatusFrozen
	return nil
}

// Suspend marks the account suspended; withdrawals and deposits still pass
// the status check, which blocks only frozen and closed accounts.
func (a *Account) Suspend() error {
	if a.Status == StatusClosed {
		return ErrAccountClosed
	}
	a.Status = StatusSuspended
	return nil
}

// Unfreeze returns a frozen or suspended account to active.
func (a *Account) Unfreeze() error {
	if a.Status == StatusClosed {
		return ErrAccountClosed
	}
	a.Status = StatusActive
	return nil
}

// Close terminally closes the account. The balance must be exactly zero.
func (a *Account) Close() error {
	if a.Status == StatusClosed {
		return ErrAccountClosed
	}
	if !a.balance.IsZero() {
		return fmt.Errorf("%w: balance is %s", ErrBalanceNotZero, a.balance)
	}
	a.Status = StatusClosed
	return nil
}

// MarkReversed sets the reversed flag on a ledger entry. Mark-only: any real
// reversal is a separate offsetting transaction.
func (a *Account) MarkReversed(txID int64) (*Transaction, error) {
	return a.ledger.MarkReversed(txID)
}

// FindTransaction returns a copy of the ledger entry with the given id.
func (a *Account) FindTransaction(txID int64) (*Transaction, error) {
	for _, tx := range a.ledger.All() {
		if tx.ID == txID {
			cp := tx
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w %d on account %s", ErrTransactionNotFound, txID, a.ID)
}

// validateAmount is chain step 1: the amount must be positive, in the account
// currency, and no larger than the configured maximum.
func (a *Account) validateAmount(amount money.Money) error {
	if !amount.SameCurrency(a.balance) {
		return fmt.Errorf("%w: amount currency %s does not match account currency %s",
			domain.ErrValidation, amount.Currency(), a.balance.Currency())
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, amount)
	}
	if over, _ := amount.GreaterThan(a.policy.MaxTransaction); over {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, amount)
	}
	return nil
}

// validateStatus is chain step 2: frozen and closed accounts reject all
// mutating operations.
func (a *Account) validateStatus() error {
	switch a.Status {
	case StatusFrozen:
		return ErrAccountFrozen
	case StatusClosed:
		return ErrAccountClosed
	}
	return nil
}

// validateLimits covers chain steps 4 and 5: the per-operation daily limit
// and the rolling monthly limit. The accumulator that would apply is the one
// after any calendar-month reset.
func (a *Account) validateLimits(amount money.Money, now time.Time) error {
	if over, _ := amount.GreaterThan(a.policy.DailyLimit); over {
		return fmt.Errorf("%w: %s over %s", ErrDailyLimitExceeded, amount, a.policy.DailyLimit)
	}
	running := a.monthlyTotal
	if !sameMonth(a.lastTxAt, now) {
		running = 0
	}
	if running+amount.Amount() > a.policy.MonthlyLimit.Amount() {
		return fmt.Errorf("%w: %s over %s", ErrMonthlyLimitExceeded, amount, a.policy.MonthlyLimit)
	}
	return nil
}

// applyEntry appends the paired ledger entry for a completed mutation and
// maintains the monthly accumulator, resetting it on the first operation in
// a new calendar month.
func (a *Account) applyEntry(kind TxKind, amount money.Money, description, relatedID string, now time.Time) *Transaction {
	if !sameMonth(a.lastTxAt, now) {
		a.monthlyTotal = 0
	}
	a.monthlyTotal += amount.Amount()
	a.lastTxAt = now
	return a.ledger.Append(kind, amount, description, a.balance, relatedID, now)
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
