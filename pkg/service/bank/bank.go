package bank

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/communitybank/corebank/pkg/domain"
	"github.com/communitybank/corebank/pkg/domain/account"
	"github.com/communitybank/corebank/pkg/domain/customer"
	"github.com/communitybank/corebank/pkg/fraud"
	"github.com/communitybank/corebank/pkg/money"
)

var (
	ErrCustomerNotFound   = fmt.Errorf("%w: customer", domain.ErrNotFound)
	ErrAccountNotFound    = fmt.Errorf("%w: account", domain.ErrNotFound)
	ErrLoanNotFound       = fmt.Errorf("%w: loan", domain.ErrNotFound)
	ErrEmailAlreadyInUse  = fmt.Errorf("%w: email already registered", domain.ErrValidation)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrValidation)
	ErrSameAccount        = fmt.Errorf("%w: source and destination accounts are the same", domain.ErrValidation)
	ErrCurrencyMismatch   = fmt.Errorf("%w: accounts hold different currencies", domain.ErrValidation)
)

// defaultSavingsRate is the annual interest rate applied to savings accounts
// opened without an explicit rate.
const defaultSavingsRate = 3.5

// Service is the bank registry: it owns the entity directories, the lock
// manager, and every operation that crosses entity boundaries. Single-entity
// rules live on the domain types; the service supplies locking, identity and
// coordination around them.
type Service struct {
	name     string
	store    *Store
	locks    *LockManager
	ids      IdentifierGenerator
	creds    CredentialService
	detector *fraud.Detector
	logger   *slog.Logger
	now      func() time.Time

	savingsRate float64

	alerts *alertLog
}

// Option customizes a Service at construction time.
type Option func(*Service)

// WithClock overrides the time source. Tests use this to drive calendar
// dependent behavior such as interest crediting.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIdentifierGenerator overrides the id scheme.
func WithIdentifierGenerator(ids IdentifierGenerator) Option {
	return func(s *Service) { s.ids = ids }
}

// WithSavingsRate overrides the default annual rate for new savings accounts.
func WithSavingsRate(rate float64) Option {
	return func(s *Service) { s.savingsRate = rate }
}

func New(name string, creds CredentialService, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		name:        name,
		store:       NewStore(),
		locks:       NewLockManager(),
		ids:         newSequentialIDs(),
		creds:       creds,
		detector:    fraud.NewDetector(),
		logger:      logger,
		now:         time.Now,
		savingsRate: defaultSavingsRate,
		alerts:      newAlertLog(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Name() string { return s.name }

// RegisterCustomerParams carries the profile for a new customer.
type RegisterCustomerParams struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	DateOfBirth time.Time
	Password    string
}

// RegisterCustomer creates a customer profile and stores the hashed
// credential token alongside it.
func (s *Service) RegisterCustomer(p RegisterCustomerParams) (*customer.Customer, error) {
	logger := s.logger.With("operation", "RegisterCustomer", "email", p.Email)

	if _, exists := s.store.CustomerByEmail(p.Email); exists {
		return nil, ErrEmailAlreadyInUse
	}
	token, err := s.creds.Hash(p.Password)
	if err != nil {
		logger.Error("credential hashing failed", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	c := &customer.Customer{
		ID:          s.ids.CustomerID(),
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Phone:       p.Phone,
		Address:     p.Address,
		DateOfBirth: p.DateOfBirth,
		CreatedAt:   s.now(),
	}
	c.SetCredentialToken(token)
	s.store.PutCustomer(c)

	logger.Info("customer registered", "customer_id", c.ID)
	return c, nil
}

// Customer returns the stored profile for an id.
func (s *Service) Customer(id string) (*customer.Customer, error) {
	c, ok := s.store.Customer(id)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrCustomerNotFound, id)
	}
	return c, nil
}

// CustomerByEmail resolves a customer by registered email address.
func (s *Service) CustomerByEmail(email string) (*customer.Customer, error) {
	c, ok := s.store.CustomerByEmail(email)
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

func (s *Service) ListCustomers() []*customer.Customer {
	return s.store.Customers()
}

// Authenticate verifies a customer's password against the stored token.
func (s *Service) Authenticate(customerID, password string) (*customer.Customer, error) {
	c, ok := s.store.Customer(customerID)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !s.creds.Verify(password, c.CredentialToken) {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}

// AuthenticateByEmail is the login path: customers sign in with email.
func (s *Service) AuthenticateByEmail(email, password string) (*customer.Customer, error) {
	c, ok := s.store.CustomerByEmail(email)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !s.creds.Verify(password, c.CredentialToken) {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}

// ChangePassword swaps the credential token after verifying the old one.
// The stored customer is replaced rather than mutated, so concurrent readers
// only ever see a complete profile.
func (s *Service) ChangePassword(customerID, oldPassword, newPassword string) error {
	s.locks.Lock(customerID)
	defer s.locks.Unlock(customerID)

	c, err := s.Authenticate(customerID, oldPassword)
	if err != nil {
		return err
	}
	token, err := s.creds.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	updated := *c
	updated.SetCredentialToken(token)
	s.store.PutCustomer(&updated)
	s.logger.Info("password changed", "customer_id", customerID)
	return nil
}

// UpdateProfileParams carries the profile fields a customer may change.
// Empty fields keep their current value.
type UpdateProfileParams struct {
	Email   string
	Phone   string
	Address string
}

// UpdateCustomerProfile updates contact details on a customer profile. A new
// email must not collide with another registered customer. The stored
// customer is replaced rather than mutated, so concurrent readers only ever
// see a complete profile.
func (s *Service) UpdateCustomerProfile(customerID string, p UpdateProfileParams) (*customer.Customer, error) {
	s.locks.Lock(customerID)
	defer s.locks.Unlock(customerID)

	c, err := s.Customer(customerID)
	if err != nil {
		return nil, err
	}
	if p.Email != "" && p.Email != c.Email {
		if other, exists := s.store.CustomerByEmail(p.Email); exists && other.ID != customerID {
			return nil, ErrEmailAlreadyInUse
		}
	}

	updated := *c
	if p.Email != "" {
		updated.Email = p.Email
	}
	if p.Phone != "" {
		updated.Phone = p.Phone
	}
	if p.Address != "" {
		updated.Address = p.Address
	}
	s.store.PutCustomer(&updated)

	s.logger.Info("profile updated", "customer_id", customerID)
	return &updated, nil
}

// OpenAccountParams carries the inputs for account creation. InterestRate is
// only meaningful for savings; zero means the bank default. BusinessName and
// TaxID are required for business accounts.
type OpenAccountParams struct {
	CustomerID     string
	Variant        account.Variant
	OpeningBalance money.Money
	Password       string
	InterestRate   float64
	BusinessName   string
	TaxID          string
}

// OpenAccount verifies the customer's credentials and creates an account
// under their profile.
func (s *Service) OpenAccount(p OpenAccountParams) (*account.Account, error) {
	if _, err := s.Authenticate(p.CustomerID, p.Password); err != nil {
		return nil, err
	}

	rate := p.InterestRate
	if p.Variant == account.Savings && rate == 0 {
		rate = s.savingsRate
	}

	a, err := account.New().
		WithID(s.ids.AccountID()).
		WithCustomerID(p.CustomerID).
		WithVariant(p.Variant).
		WithOpeningBalance(p.OpeningBalance).
		WithInterestRate(rate).
		WithBusinessDetails(p.BusinessName, p.TaxID).
		WithCreatedAt(s.now()).
		Build()
	if err != nil {
		return nil, err
	}
	s.store.PutAccount(a)

	s.logger.Info("account opened",
		"account_id", a.ID,
		"customer_id", a.CustomerID,
		"variant", a.Variant,
		"opening_balance", a.Balance().String(),
	)
	return a, nil
}

// Account returns the account for an id. Callers must treat the result as
// read-only; mutation goes through the service operations, and reads of the
// mutable fields (balance, status, ledger) go through AccountSnapshot and
// AccountTransactions, which hold the account lock.
func (s *Service) Account(id string) (*account.Account, error) {
	a, ok := s.store.Account(id)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrAccountNotFound, id)
	}
	return a, nil
}

// AccountSnapshot returns a point-in-time copy of the account's state, read
// under the account lock.
func (s *Service) AccountSnapshot(id string) (account.Snapshot, error) {
	a, err := s.Account(id)
	if err != nil {
		return account.Snapshot{}, err
	}
	s.locks.Lock(id)
	defer s.locks.Unlock(id)
	return a.Snapshot(), nil
}

// AccountTransactions returns a copy of the account's full ledger, read
// under the account lock.
func (s *Service) AccountTransactions(id string) ([]account.Transaction, error) {
	a, err := s.Account(id)
	if err != nil {
		return nil, err
	}
	s.locks.Lock(id)
	defer s.locks.Unlock(id)
	return a.Transactions(), nil
}

func (s *Service) ListAccounts() []*account.Account {
	return s.store.Accounts()
}

// CustomerAccounts lists the accounts owned by one customer.
func (s *Service) CustomerAccounts(customerID string) []*account.Account {
	var out []*account.Account
	for _, a := range s.store.Accounts() {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	return out
}

// Deposit credits an account through its full validation chain.
func (s *Service) Deposit(accountID string, amount money.Money, description string) (*account.Transaction, error) {
	a, err := s.Account(accountID)
	if err != nil {
		return nil, err
	}
	s.locks.Lock(accountID)
	defer s.locks.Unlock(accountID)

	tx, err := a.Deposit(amount, description, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("deposit accepted", "account_id", accountID, "amount", amount.String(), "reference", tx.Reference)
	return tx, nil
}

// Withdraw debits an account through its full validation chain.
func (s *Service) Withdraw(accountID string, amount money.Money, description string) (*account.Transaction, error) {
	a, err := s.Account(accountID)
	if err != nil {
		return nil, err
	}
	s.locks.Lock(accountID)
	defer s.locks.Unlock(accountID)

	tx, err := a.Withdraw(amount, description, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("withdrawal accepted", "account_id", accountID, "amount", amount.String(), "reference", tx.Reference)
	return tx, nil
}

// FreezeAccount blocks all transactions on the account until unfrozen.
func (s *Service) FreezeAccount(accountID string) error {
	return s.withAccountLock(accountID, func(a *account.Account) error {
		return a.Freeze()
	})
}

// UnfreezeAccount returns a frozen or suspended account to active status.
func (s *Service) UnfreezeAccount(accountID string) error {
	return s.withAccountLock(accountID, func(a *account.Account) error {
		return a.Unfreeze()
	})
}

// SuspendAccount marks the account suspended. Suspension is advisory and
// does not block transactions.
func (s *Service) SuspendAccount(accountID string) error {
	return s.withAccountLock(accountID, func(a *account.Account) error {
		return a.Suspend()
	})
}

// CloseAccount closes an account whose balance is exactly zero.
func (s *Service) CloseAccount(accountID string) error {
	return s.withAccountLock(accountID, func(a *account.Account) error {
		return a.Close()
	})
}

func (s *Service) withAccountLock(accountID string, fn func(*account.Account) error) error {
	a, err := s.Account(accountID)
	if err != nil {
		return err
	}
	s.locks.Lock(accountID)
	defer s.locks.Unlock(accountID)
	return fn(a)
}

// ReverseTransaction marks a ledger entry reversed and appends an offsetting
// Reversal entry so the balance history stays append-only.
func (s *Service) ReverseTransaction(accountID string, txID int64, reason string) (*account.Transaction, error) {
	a, err := s.Account(accountID)
	if err != nil {
		return nil, err
	}
	s.locks.Lock(accountID)
	defer s.locks.Unlock(accountID)

	orig, err := a.FindTransaction(txID)
	if err != nil {
		return nil, err
	}
	if _, err := a.MarkReversed(txID); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Reversal of %s", orig.Reference)
	if reason != "" {
		description += ": " + reason
	}

	var offset *account.Transaction
	if isCreditKind(orig.Kind) {
		offset, err = a.ApplyDebit(account.TxReversal, orig.Amount, description, orig.Reference, s.now())
	} else {
		offset, err = a.ApplyCredit(account.TxReversal, orig.Amount, description, orig.Reference, s.now())
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("transaction reversed", "account_id", accountID, "transaction_id", txID, "offset_reference", offset.Reference)
	return offset, nil
}

func isCreditKind(k account.TxKind) bool {
	switch k {
	case account.TxDeposit, account.TxTransferIn, account.TxInterest, account.TxLoanDisbursement:
		return true
	}
	return false
}
