package webapi

import (
	"github.com/communitybank/corebank/pkg/config"
	authsvc "github.com/communitybank/corebank/pkg/service/auth"
	"github.com/communitybank/corebank/pkg/service/bank"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp wires the HTTP surface over the bank registry.
func NewApp(svc *bank.Service, auth *authsvc.Service, cfg *config.App) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: cfg.Bank.Name,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Default to 500 if status code cannot be determined
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(cfg.Bank.Name + " API is up")
	})

	AuthRoutes(app, auth)
	CustomerRoutes(app, svc, cfg.Jwt)
	AccountRoutes(app, svc, cfg.Jwt)
	TransferRoutes(app, svc, cfg.Jwt)
	LoanRoutes(app, svc, cfg.Jwt)
	AdminRoutes(app, svc, cfg.Jwt)

	return app
}
