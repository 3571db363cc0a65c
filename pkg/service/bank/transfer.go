package bank

import (
	"fmt"
	"sync"
	"time"

	"github.com/communitybank/corebank/pkg/domain"
	"github.com/communitybank/corebank/pkg/domain/account"
	"github.com/communitybank/corebank/pkg/money"
)

// FraudAlert records a transfer rejected by the fraud heuristic.
type FraudAlert struct {
	FromAccountID string
	ToAccountID   string
	Amount        money.Money
	FlaggedAt     time.Time
}

// alertLog is the append-only record of fraud rejections.
type alertLog struct {
	mu     sync.Mutex
	alerts []FraudAlert
}

func newAlertLog() *alertLog {
	return &alertLog{}
}

func (l *alertLog) append(a FraudAlert) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alerts = append(l.alerts, a)
}

func (l *alertLog) all() []FraudAlert {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]FraudAlert, len(l.alerts))
	copy(out, l.alerts)
	return out
}

func (l *alertLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.alerts)
}

// FraudAlerts returns a copy of the recorded fraud rejections.
func (s *Service) FraudAlerts() []FraudAlert {
	return s.alerts.all()
}

// Transfer moves funds between two accounts as one atomic operation.
//
// The fraud heuristic is evaluated first, under the source account's lock
// alone: it reads the balance and walks the ledger, so it needs the same
// exclusion as any other read of mutable account state. A flagged transfer
// is recorded and rejected with no state change. Both account locks are then
// acquired in canonical id order and the source's withdrawal validation
// chain re-runs under the locks, so no partial transfer is ever observable.
func (s *Service) Transfer(fromID, toID string, amount money.Money, description string) error {
	logger := s.logger.With("operation", "Transfer", "from", fromID, "to", toID, "amount", amount.String())

	if fromID == toID {
		return ErrSameAccount
	}
	from, err := s.Account(fromID)
	if err != nil {
		return err
	}
	to, err := s.Account(toID)
	if err != nil {
		return err
	}
	if from.Currency() != to.Currency() {
		return ErrCurrencyMismatch
	}

	now := s.now()
	s.locks.Lock(fromID)
	suspicious := s.detector.Suspicious(from, amount, now)
	s.locks.Unlock(fromID)
	if suspicious {
		s.alerts.append(FraudAlert{
			FromAccountID: fromID,
			ToAccountID:   toID,
			Amount:        amount,
			FlaggedAt:     now,
		})
		logger.Warn("transfer flagged by fraud heuristic")
		return fmt.Errorf("%w: transfer of %s from %s", domain.ErrFraudSuspicion, amount.String(), fromID)
	}

	s.locks.LockPair(fromID, toID)
	defer s.locks.UnlockPair(fromID, toID)

	if err := from.ValidateWithdraw(amount, now); err != nil {
		return err
	}

	outDesc := description
	if outDesc == "" {
		outDesc = "Transfer to " + toID
	}
	inDesc := description
	if inDesc == "" {
		inDesc = "Transfer from " + fromID
	}

	if _, err := from.ApplyDebit(account.TxTransferOut, amount, outDesc, toID, now); err != nil {
		return err
	}
	if _, err := to.ApplyCredit(account.TxTransferIn, amount, inDesc, fromID, now); err != nil {
		// The debit already validated amount and currency, so the matching
		// credit cannot fail; surface loudly if that ever stops holding.
		logger.Error("credit leg failed after debit applied", "error", err)
		return err
	}

	logger.Info("transfer completed")
	return nil
}
