// Package loan implements the amortization engine and loan lifecycle.
//
// Loans are independent entities linked to one account. Amounts are held as
// decimals: the fixed monthly payment comes from the standard annuity
// formula, and each payment splits into an interest portion on the remaining
// balance and a principal portion that reduces it.
package loan

import (
	"fmt"
	"time"

	"github.com/communitybank/corebank/pkg/domain"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidTerms is returned for a non-positive principal, rate or term.
	ErrInvalidTerms = fmt.Errorf("%w: principal, rate and term must be positive", domain.ErrValidation)
	// ErrNotPending is returned when approving a loan that is not pending.
	ErrNotPending = fmt.Errorf("%w: loan is not pending", domain.ErrState)
	// ErrNotApproved is returned when activating a loan that is not approved.
	ErrNotApproved = fmt.Errorf("%w: loan is not approved", domain.ErrState)
	// ErrNotActive is returned when paying a loan that is not active.
	ErrNotActive = fmt.Errorf("%w: loan is not active", domain.ErrState)
	// ErrPaymentTooSmall is returned when a payment is below the monthly payment.
	ErrPaymentTooSmall = fmt.Errorf("%w: payment must be at least the monthly payment", domain.ErrValidation)
)

// Status is the lifecycle state of a loan.
type Status string

// Loan statuses. Pending -> Approved -> Active is the issuing path; Active ->
// PaidOff on full payoff. Defaulted is reachable but outside the core flows.
const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusActive    Status = "active"
	StatusPaidOff   Status = "paid_off"
	StatusDefaulted Status = "defaulted"
)

// settleThreshold is half the smallest cash unit: a remaining balance below
// it cannot be represented as money owed and settles to zero, so a loan paid
// with exactly the computed monthly payment for its full term reaches PaidOff
// despite rounding.
var settleThreshold = decimal.RequireFromString("0.005")

var (
	one            = decimal.NewFromInt(1)
	twelveHundred  = decimal.NewFromInt(1200)
	amortPrecision = int32(16)
)

// Payment is one entry in a loan's own payment ledger.
type Payment struct {
	ID               int64
	Amount           decimal.Decimal
	InterestPortion  decimal.Decimal
	PrincipalPortion decimal.Decimal
	RemainingAfter   decimal.Decimal
	Timestamp        time.Time
	Reference        string
}

// Loan is the aggregate for a single amortized loan.
type Loan struct {
	ID         string
	AccountID  string
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal // percent
	TermMonths int

	MonthlyPayment  decimal.Decimal
	Remaining       decimal.Decimal
	Status          Status
	IssueDate       time.Time
	NextPaymentDate time.Time

	payments []Payment
}

// New creates a pending loan and computes the fixed monthly payment:
//
//	payment = P * r * (1+r)^n / ((1+r)^n - 1), r = annualRate/100/12
func New(id, accountID string, principal, annualRatePct decimal.Decimal, termMonths int, issued time.Time) (*Loan, error) {
	if id == "" || accountID == "" {
		return nil, fmt.Errorf("%w: loan and account ids are required", domain.ErrValidation)
	}
	if !principal.IsPositive() || !annualRatePct.IsPositive() || termMonths < 1 {
		return nil, ErrInvalidTerms
	}
	r := annualRatePct.DivRound(twelveHundred, amortPrecision)
	factor := one.Add(r).Pow(decimal.NewFromInt(int64(termMonths))).Round(amortPrecision)
	payment := principal.Mul(r).Mul(factor).DivRound(factor.Sub(one), amortPrecision)
	return &Loan{
		ID:              id,
		AccountID:       accountID,
		Principal:       principal,
		AnnualRate:      annualRatePct,
		TermMonths:      termMonths,
		MonthlyPayment:  payment,
		Remaining:       principal,
		Status:          StatusPending,
		IssueDate:       issued,
		NextPaymentDate: issued.AddDate(0, 1, 0),
	}, nil
}

// Approve moves a pending loan to approved.
func (l *Loan) Approve() error {
	if l.Status != StatusPending {
		return fmt.Errorf("%w: status %s", ErrNotPending, l.Status)
	}
	l.Status = StatusApproved
	return nil
}

// Activate moves an approved loan to active. Disbursing the principal to the
// linked account is the registry's responsibility.
func (l *Loan) Activate() error {
	if l.Status != StatusApproved {
		return fmt.Errorf("%w: status %s", ErrNotApproved, l.Status)
	}
	l.Status = StatusActive
	return nil
}

// Default marks an active loan defaulted.
func (l *Loan) Default() error {
	if l.Status != StatusActive {
		return fmt.Errorf("%w: status %s", ErrNotActive, l.Status)
	}
	l.Status = StatusDefaulted
	return nil
}

// MakePayment accepts a payment of at least the monthly payment, splits it
// into interest and principal portions, reduces the remaining balance and
// appends an entry to the loan's payment ledger. The next due date advances
// by one month unconditionally; overpayment does not recompute the schedule.
func (l *Loan) MakePayment(amount decimal.Decimal, now time.Time) (*Payment, error) {
	if l.Status != StatusActive {
		return nil, fmt.Errorf("%w: status %s", ErrNotActive, l.Status)
	}
	if amount.LessThan(l.MonthlyPayment) {
		return nil, fmt.Errorf("%w: got %s, monthly payment %s",
			ErrPaymentTooSmall, amount, l.MonthlyPayment.Round(2))
	}
	interest := l.Remaining.Mul(l.monthlyRate()).Round(8)
	principalPortion := amount.Sub(interest)
	remaining := l.Remaining.Sub(principalPortion).Round(8)
	if remaining.LessThan(settleThreshold) {
		remaining = decimal.Zero
	}
	l.Remaining = remaining
	l.NextPaymentDate = l.NextPaymentDate.AddDate(0, 1, 0)

	p := Payment{
		ID:               int64(len(l.payments) + 1),
		Amount:           amount,
		InterestPortion:  interest,
		PrincipalPortion: principalPortion,
		RemainingAfter:   remaining,
		Timestamp:        now,
		Reference:        fmt.Sprintf("%s-PMT%04d", l.ID, len(l.payments)+1),
	}
	l.payments = append(l.payments, p)

	if l.Remaining.IsZero() {
		l.Status = StatusPaidOff
	}
	return &p, nil
}

// Snapshot is a point-in-time copy of the loan's mutable state alongside its
// fixed terms. Taking one requires the loan's exclusive lock; the copy itself
// is safe to read anywhere afterwards.
type Snapshot struct {
	ID              string
	AccountID       string
	Principal       decimal.Decimal
	AnnualRate      decimal.Decimal
	TermMonths      int
	MonthlyPayment  decimal.Decimal
	Remaining       decimal.Decimal
	Status          Status
	IssueDate       time.Time
	NextPaymentDate time.Time
}

// Snapshot copies the loan state. Caller must hold the loan's exclusive lock.
func (l *Loan) Snapshot() Snapshot {
	return Snapshot{
		ID:              l.ID,
		AccountID:       l.AccountID,
		Principal:       l.Principal,
		AnnualRate:      l.AnnualRate,
		TermMonths:      l.TermMonths,
		MonthlyPayment:  l.MonthlyPayment,
		Remaining:       l.Remaining,
		Status:          l.Status,
		IssueDate:       l.IssueDate,
		NextPaymentDate: l.NextPaymentDate,
	}
}

// Payments returns a copy of the loan's payment ledger in order.
func (l *Loan) Payments() []Payment {
	out := make([]Payment, len(l.payments))
	copy(out, l.payments)
	return out
}

func (l *Loan) monthlyRate() decimal.Decimal {
	return l.AnnualRate.DivRound(twelveHundred, amortPrecision)
}

// RateForTerm returns the annual interest rate in percent offered for a loan
// term.
func RateForTerm(termMonths int) decimal.Decimal {
	switch termMonths {
	case 12:
		return decimal.RequireFromString("5.5")
	case 24:
		return decimal.RequireFromString("6.0")
	case 36:
		return decimal.RequireFromString("6.5")
	case 48:
		return decimal.RequireFromString("7.0")
	case 60:
		return decimal.RequireFromString("7.5")
	default:
		return decimal.RequireFromString("8.0")
	}
}
