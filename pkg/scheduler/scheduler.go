// Package scheduler runs the registry's batch sweeps on cron schedules.
package scheduler

import (
	"log/slog"

	"github.com/communitybank/corebank/pkg/config"
	"github.com/communitybank/corebank/pkg/service/bank"
	"github.com/robfig/cron/v3"
)

// Scheduler owns the cron runner for the interest and maintenance-fee
// sweeps. The fee sweep has no double-charge protection, so the schedule is
// the only thing keeping it monthly; both jobs default to the first of the
// month during the idle window.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func New(svc *bank.Service, cfg *config.Jobs, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New()

	if _, err := c.AddFunc(cfg.InterestSchedule, func() {
		credited := svc.CreditMonthlyInterest()
		logger.Info("scheduled interest sweep ran", "credited", credited)
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(cfg.FeeSchedule, func() {
		charged := svc.ChargeMaintenanceFees()
		logger.Info("scheduled fee sweep ran", "charged", charged)
	}); err != nil {
		return nil, err
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("batch scheduler started")
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("batch scheduler stopped")
}
