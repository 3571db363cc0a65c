package account

import (
	"fmt"

	"github.com/communitybank/corebank/pkg/currency"
	"github.com/communitybank/corebank/pkg/money"
)

// Variant identifies an account product. Variants form a closed set of
// tagged policy configurations; behavior differences are data, not subtypes.
type Variant string

// Account variants.
const (
	Savings  Variant = "savings"
	Checking Variant = "checking"
	Business Variant = "business"
)

// IsValid reports whether the variant belongs to the closed set.
func (v Variant) IsValid() bool {
	switch v {
	case Savings, Checking, Business:
		return true
	}
	return false
}

// Policy carries the per-variant thresholds an account enforces. All values
// are denominated in the account's currency.
type Policy struct {
	MinimumBalance money.Money
	DailyLimit     money.Money
	MonthlyLimit   money.Money
	MaintenanceFee money.Money
	MaxTransaction money.Money
	// OverdraftLimit is how far below zero the balance may go on withdrawal.
	// Zero for variants without overdraft.
	OverdraftLimit money.Money
}

// policyTable holds the variant thresholds in major units; PolicyFor converts
// them into the account currency at creation time.
var policyTable = map[Variant]struct {
	minimum, daily, monthly, fee, overdraft float64
}{
	Savings:  {minimum: 500, daily: 5_000, monthly: 50_000, fee: 5, overdraft: 0},
	Checking: {minimum: 100, daily: 10_000, monthly: 100_000, fee: 10, overdraft: 1_000},
	Business: {minimum: 2_500, daily: 50_000, monthly: 500_000, fee: 25, overdraft: 0},
}

// maxTransactionMajor is the largest amount a single operation may move,
// shared by all variants.
const maxTransactionMajor = 1_000_000

// PolicyFor builds the policy for a variant denominated in the given currency.
func PolicyFor(v Variant, code currency.Code) (Policy, error) {
	row, ok := policyTable[v]
	if !ok {
		return Policy{}, fmt.Errorf("%w: unknown account variant %q", ErrInvalidVariant, v)
	}
	if !currency.IsSupported(code) {
		return Policy{}, fmt.Errorf("%w: %s", money.ErrUnsupportedCurrency, code)
	}
	return Policy{
		MinimumBalance: money.Must(row.minimum, code),
		DailyLimit:     money.Must(row.daily, code),
		MonthlyLimit:   money.Must(row.monthly, code),
		MaintenanceFee: money.Must(row.fee, code),
		MaxTransaction: money.Must(maxTransactionMajor, code),
		OverdraftLimit: money.Must(row.overdraft, code),
	}, nil
}

// CanWithdraw is the variant sufficiency predicate: the post-withdrawal
// balance must stay at or above the minimum balance, or within the overdraft
// allowance when the variant has one.
func (p Policy) CanWithdraw(balance, amount money.Money) bool {
	post := balance.Amount() - amount.Amount()
	if post >= p.MinimumBalance.Amount() {
		return true
	}
	return p.OverdraftLimit.IsPositive() && post >= -p.OverdraftLimit.Amount()
}
