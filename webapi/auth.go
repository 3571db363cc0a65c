package webapi

import (
	authsvc "github.com/communitybank/corebank/pkg/service/auth"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, auth *authsvc.Service) {
	app.Post("/auth/login", Login(auth))
}

// Login authenticates a customer and returns a JWT token.
func Login(auth *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[LoginInput](c)
		if input == nil {
			return err // Error already written by BindAndValidate
		}
		token, cust, err := auth.Login(input.Email, input.Password)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Success login", fiber.Map{
			"token":    token,
			"customer": toCustomerRead(cust),
		})
	}
}
