package webapi

import (
	"github.com/communitybank/corebank/pkg/config"
	"github.com/communitybank/corebank/pkg/middleware"
	"github.com/communitybank/corebank/pkg/service/bank"
	"github.com/gofiber/fiber/v2"
)

func TransferRoutes(app *fiber.App, svc *bank.Service, cfg *config.Jwt) {
	app.Post("/account/:id/transfer", middleware.JwtProtected(cfg), Transfer(svc))
}

// Transfer moves funds from an owned account to any destination account.
func Transfer(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := ownedAccount(c, svc)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		input, err := BindAndValidate[TransferInput](c)
		if input == nil {
			return err
		}
		amount, err := parseAmount(input.Amount, from.Currency())
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		if err := svc.Transfer(from.ID, input.ToAccountID, amount, input.Description); err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transfer successful", fiber.Map{
			"from_account_id": from.ID,
			"to_account_id":   input.ToAccountID,
			"amount":          amount.Float(),
			"currency":        string(amount.Currency()),
		})
	}
}
