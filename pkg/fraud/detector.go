// Package fraud implements the fixed rule-based heuristic evaluated before
// transfers. The detector is stateless and only reads account state; it
// requires no lock beyond whatever the caller already holds for the read.
package fraud

import (
	"time"

	"github.com/communitybank/corebank/pkg/domain/account"
	"github.com/communitybank/corebank/pkg/money"
)

// Heuristic thresholds, as fractions of the source account's state.
const (
	// balanceShare flags amounts above this share of the current balance.
	balanceShare = 0.8
	// dailyLimitShare flags amounts near the daily transaction limit.
	dailyLimitShare = 0.9
	// hourlyActivityShare flags trailing-hour activity above this share of
	// the daily limit.
	hourlyActivityShare = 0.5
	// activityWindow is the trailing window inspected for recent activity.
	activityWindow = time.Hour
)

// Detector evaluates transfer requests against the fixed heuristic.
type Detector struct{}

// NewDetector returns the rule-based detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Suspicious reports whether a transfer of amount from the source account
// trips any rule: amount above 80% of the balance, amount above 90% of the
// daily limit, or more than half the daily limit moved in the trailing hour.
func (d *Detector) Suspicious(src *account.Account, amount money.Money, now time.Time) bool {
	a := float64(amount.Amount())
	balance := float64(src.Balance().Amount())
	daily := float64(src.Policy().DailyLimit.Amount())

	if a > balance*balanceShare {
		return true
	}
	if a > daily*dailyLimitShare {
		return true
	}
	recent := float64(src.RecentActivityTotal(now.Add(-activityWindow)))
	return recent > daily*hourlyActivityShare
}
