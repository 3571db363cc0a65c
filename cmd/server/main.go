package main

import (
	"fmt"
	"log/slog"

	"github.com/communitybank/corebank/pkg/config"
	"github.com/communitybank/corebank/pkg/scheduler"
	"github.com/communitybank/corebank/pkg/service/auth"
	"github.com/communitybank/corebank/pkg/service/bank"
	"github.com/communitybank/corebank/webapi"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	logger := slog.Default()

	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	svc := bank.New(
		cfg.Bank.Name,
		auth.BcryptCredentials{},
		logger,
		bank.WithSavingsRate(cfg.Bank.SavingsRate),
	)
	authSvc := auth.New(svc, cfg.Jwt, logger)

	if cfg.Jobs.Enabled {
		sched, err := scheduler.New(svc, cfg.Jobs, logger)
		if err != nil {
			return fmt.Errorf("failed to build batch scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	fiberApp := webapi.NewApp(svc, authSvc, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server",
		"env", cfg.Env,
		"address", addr,
		"bank", cfg.Bank.Name,
	)

	return fiberApp.Listen(addr)
}
