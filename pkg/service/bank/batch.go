package bank

import "github.com/communitybank/corebank/pkg/domain/account"

// CreditMonthlyInterest sweeps a snapshot of the account directory and
// credits interest on every active savings account. The per-account
// calendar-month guard makes the sweep idempotent within a month, so
// over-eager scheduling is harmless. Returns the number of accounts
// credited.
//
// The snapshot is not synchronized with the directory: accounts opened
// mid-sweep may be skipped until the next run.
func (s *Service) CreditMonthlyInterest() int {
	credited := 0
	for _, a := range s.store.Accounts() {
		if a.Variant != account.Savings || a.Status != account.StatusActive {
			continue
		}
		s.locks.Lock(a.ID)
		tx, err := a.CreditMonthlyInterest(s.now())
		s.locks.Unlock(a.ID)
		if err != nil {
			s.logger.Error("interest credit failed", "account_id", a.ID, "error", err)
			continue
		}
		if tx != nil {
			credited++
			s.logger.Info("interest credited", "account_id", a.ID, "amount", tx.Amount.String())
		}
	}
	s.logger.Info("interest sweep finished", "credited", credited)
	return credited
}

// ChargeMaintenanceFees sweeps a snapshot of the account directory and
// deducts each active account's variant fee when the balance covers it.
// There is no periodic guard: running the sweep twice in one period charges
// twice, so scheduling owns the cadence. Returns the number of accounts
// charged.
func (s *Service) ChargeMaintenanceFees() int {
	charged := 0
	for _, a := range s.store.Accounts() {
		if a.Status != account.StatusActive {
			continue
		}
		s.locks.Lock(a.ID)
		tx, err := a.ChargeMaintenanceFee(s.now())
		s.locks.Unlock(a.ID)
		if err != nil {
			s.logger.Error("maintenance fee failed", "account_id", a.ID, "error", err)
			continue
		}
		if tx != nil {
			charged++
			s.logger.Info("maintenance fee charged", "account_id", a.ID, "amount", tx.Amount.String())
		}
	}
	s.logger.Info("maintenance fee sweep finished", "charged", charged)
	return charged
}
