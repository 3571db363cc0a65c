package bank

import (
	"fmt"

	"github.com/communitybank/corebank/pkg/domain"
	"github.com/communitybank/corebank/pkg/domain/account"
	"github.com/communitybank/corebank/pkg/domain/loan"
	"github.com/communitybank/corebank/pkg/money"
	"github.com/shopspring/decimal"
)

// collateralShare is the fraction of the requested principal the linked
// account must hold before a loan application is accepted.
var collateralShare = decimal.NewFromFloat(0.10)

// ApplyForLoan files a loan application against an account. The account
// must hold at least 10% of the requested principal; the annual rate is
// fixed by the requested term.
func (s *Service) ApplyForLoan(accountID string, principal decimal.Decimal, termMonths int) (*loan.Loan, error) {
	a, err := s.Account(accountID)
	if err != nil {
		return nil, err
	}

	required := principal.Mul(collateralShare)
	balance := decimal.NewFromFloat(a.Balance().Float())
	if balance.LessThan(required) {
		return nil, fmt.Errorf("%w: account balance must be at least 10%% of the requested principal", domain.ErrValidation)
	}

	l, err := loan.New(s.ids.LoanID(), accountID, principal, loan.RateForTerm(termMonths), termMonths, s.now())
	if err != nil {
		return nil, err
	}
	s.store.PutLoan(l)

	s.logger.Info("loan application filed",
		"loan_id", l.ID,
		"account_id", accountID,
		"principal", principal.String(),
		"term_months", termMonths,
		"rate", l.AnnualRate.String(),
	)
	return l, nil
}

// ApproveLoan approves and activates a pending loan, disbursing the
// principal to the linked account as a credit.
func (s *Service) ApproveLoan(loanID string) (*loan.Loan, error) {
	l, ok := s.store.Loan(loanID)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrLoanNotFound, loanID)
	}
	a, err := s.Account(l.AccountID)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(loanID)
	defer s.locks.Unlock(loanID)

	// Convert before the status transitions: a principal the account
	// currency cannot represent must reject with the loan still pending.
	amount, err := money.New(l.Principal.InexactFloat64(), a.Currency())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := l.Approve(); err != nil {
		return nil, err
	}
	if err := l.Activate(); err != nil {
		return nil, err
	}

	s.locks.Lock(a.ID)
	defer s.locks.Unlock(a.ID)
	if _, err := a.ApplyCredit(account.TxLoanDisbursement, amount, "Loan Disbursement - "+loanID, loanID, s.now()); err != nil {
		return nil, err
	}

	s.logger.Info("loan approved and disbursed", "loan_id", loanID, "account_id", a.ID, "amount", amount.String())
	return l, nil
}

// MakeLoanPayment applies a payment to an active loan.
func (s *Service) MakeLoanPayment(loanID string, amount decimal.Decimal) (*loan.Payment, error) {
	l, ok := s.store.Loan(loanID)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrLoanNotFound, loanID)
	}

	s.locks.Lock(loanID)
	defer s.locks.Unlock(loanID)

	p, err := l.MakePayment(amount, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("loan payment applied",
		"loan_id", loanID,
		"amount", amount.String(),
		"remaining", l.Remaining.String(),
		"status", l.Status,
	)
	return p, nil
}

// DefaultLoan marks an active loan defaulted. No claw-back of disbursed
// funds is attempted.
func (s *Service) DefaultLoan(loanID string) error {
	l, ok := s.store.Loan(loanID)
	if !ok {
		return fmt.Errorf("%w %s", ErrLoanNotFound, loanID)
	}
	s.locks.Lock(loanID)
	defer s.locks.Unlock(loanID)
	if err := l.Default(); err != nil {
		return err
	}
	s.logger.Warn("loan marked defaulted", "loan_id", loanID, "remaining", l.Remaining.String())
	return nil
}

// LoanSnapshot returns a point-in-time copy of the loan's state, read under
// the loan lock.
func (s *Service) LoanSnapshot(id string) (loan.Snapshot, error) {
	l, ok := s.store.Loan(id)
	if !ok {
		return loan.Snapshot{}, fmt.Errorf("%w %s", ErrLoanNotFound, id)
	}
	s.locks.Lock(id)
	defer s.locks.Unlock(id)
	return l.Snapshot(), nil
}

// Loan returns the loan for an id.
func (s *Service) Loan(id string) (*loan.Loan, error) {
	l, ok := s.store.Loan(id)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrLoanNotFound, id)
	}
	return l, nil
}

func (s *Service) ListLoans() []*loan.Loan {
	return s.store.Loans()
}

// CustomerLoans lists loans linked to any of a customer's accounts.
func (s *Service) CustomerLoans(customerID string) []*loan.Loan {
	owned := make(map[string]bool)
	for _, a := range s.CustomerAccounts(customerID) {
		owned[a.ID] = true
	}
	var out []*loan.Loan
	for _, l := range s.store.Loans() {
		if owned[l.AccountID] {
			out = append(out, l)
		}
	}
	return out
}
