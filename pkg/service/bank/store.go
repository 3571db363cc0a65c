package bank

import (
	"sync"

	"github.com/communitybank/corebank/pkg/domain/account"
	"github.com/communitybank/corebank/pkg/domain/customer"
	"github.com/communitybank/corebank/pkg/domain/loan"
)

// Store holds the in-memory entity directories. Lookups and inserts are
// safe under concurrent use; mutation of a stored entity is governed by the
// LockManager, not by the store itself.
type Store struct {
	customers sync.Map // customer id -> *customer.Customer
	accounts  sync.Map // account id  -> *account.Account
	loans     sync.Map // loan id     -> *loan.Loan
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) PutCustomer(c *customer.Customer) {
	s.customers.Store(c.ID, c)
}

func (s *Store) Customer(id string) (*customer.Customer, bool) {
	v, ok := s.customers.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*customer.Customer), true
}

// CustomerByEmail scans the directory; registration volume is small enough
// that a secondary index is not worth maintaining.
func (s *Store) CustomerByEmail(email string) (*customer.Customer, bool) {
	var found *customer.Customer
	s.customers.Range(func(_, v any) bool {
		c := v.(*customer.Customer)
		if c.Email == email {
			found = c
			return false
		}
		return true
	})
	return found, found != nil
}

func (s *Store) Customers() []*customer.Customer {
	var out []*customer.Customer
	s.customers.Range(func(_, v any) bool {
		out = append(out, v.(*customer.Customer))
		return true
	})
	return out
}

func (s *Store) PutAccount(a *account.Account) {
	s.accounts.Store(a.ID, a)
}

func (s *Store) Account(id string) (*account.Account, bool) {
	v, ok := s.accounts.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*account.Account), true
}

// Accounts returns a point-in-time snapshot of the directory. Entities
// inserted while the snapshot is being taken may or may not appear.
func (s *Store) Accounts() []*account.Account {
	var out []*account.Account
	s.accounts.Range(func(_, v any) bool {
		out = append(out, v.(*account.Account))
		return true
	})
	return out
}

func (s *Store) PutLoan(l *loan.Loan) {
	s.loans.Store(l.ID, l)
}

func (s *Store) Loan(id string) (*loan.Loan, bool) {
	v, ok := s.loans.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*loan.Loan), true
}

func (s *Store) Loans() []*loan.Loan {
	var out []*loan.Loan
	s.loans.Range(func(_, v any) bool {
		out = append(out, v.(*loan.Loan))
		return true
	})
	return out
}
