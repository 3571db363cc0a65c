package webapi

import (
	"time"

	"github.com/communitybank/corebank/pkg/config"
	"github.com/communitybank/corebank/pkg/middleware"
	"github.com/communitybank/corebank/pkg/service/bank"
	"github.com/gofiber/fiber/v2"
)

func CustomerRoutes(app *fiber.App, svc *bank.Service, cfg *config.Jwt) {
	app.Post("/customer", RegisterCustomer(svc))
	app.Get("/customer/me", middleware.JwtProtected(cfg), GetCurrentCustomer(svc))
	app.Put("/customer/me", middleware.JwtProtected(cfg), UpdateProfile(svc))
	app.Get("/customer/me/accounts", middleware.JwtProtected(cfg), GetCustomerAccounts(svc))
	app.Get("/customer/me/loans", middleware.JwtProtected(cfg), GetCustomerLoans(svc))
	app.Put("/customer/me/password", middleware.JwtProtected(cfg), ChangePassword(svc))
}

// RegisterCustomer creates a customer profile.
func RegisterCustomer(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[RegisterCustomerInput](c)
		if input == nil {
			return err
		}

		var dob time.Time
		if input.DateOfBirth != "" {
			dob, err = time.Parse("2006-01-02", input.DateOfBirth)
			if err != nil {
				return ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", "date_of_birth must be YYYY-MM-DD")
			}
		}

		cust, err := svc.RegisterCustomer(bank.RegisterCustomerParams{
			FirstName:   input.FirstName,
			LastName:    input.LastName,
			Email:       input.Email,
			Phone:       input.Phone,
			Address:     input.Address,
			DateOfBirth: dob,
			Password:    input.Password,
		})
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Customer registered", toCustomerRead(cust))
	}
}

// GetCurrentCustomer returns the authenticated customer's profile.
func GetCurrentCustomer(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := CurrentCustomerID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		cust, err := svc.Customer(id)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Customer found", toCustomerRead(cust))
	}
}

// UpdateProfile changes the authenticated customer's contact details.
// Omitted fields are left as they are.
func UpdateProfile(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := CurrentCustomerID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		input, err := BindAndValidate[UpdateProfileInput](c)
		if input == nil {
			return err
		}
		cust, err := svc.UpdateCustomerProfile(id, bank.UpdateProfileParams{
			Email:   input.Email,
			Phone:   input.Phone,
			Address: input.Address,
		})
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Profile updated", toCustomerRead(cust))
	}
}

// GetCustomerAccounts lists the authenticated customer's accounts.
func GetCustomerAccounts(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := CurrentCustomerID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		accounts := svc.CustomerAccounts(id)
		out := make([]AccountRead, 0, len(accounts))
		for _, a := range accounts {
			snap, err := svc.AccountSnapshot(a.ID)
			if err != nil {
				continue
			}
			out = append(out, toAccountRead(snap))
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Accounts found", out)
	}
}

// GetCustomerLoans lists loans linked to the authenticated customer's
// accounts.
func GetCustomerLoans(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := CurrentCustomerID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		loans := svc.CustomerLoans(id)
		out := make([]LoanRead, 0, len(loans))
		for _, l := range loans {
			snap, err := svc.LoanSnapshot(l.ID)
			if err != nil {
				continue
			}
			out = append(out, toLoanRead(snap))
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Loans found", out)
	}
}

// ChangePassword rotates the authenticated customer's credential.
func ChangePassword(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := CurrentCustomerID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		input, err := BindAndValidate[ChangePasswordInput](c)
		if input == nil {
			return err
		}
		if err := svc.ChangePassword(id, input.OldPassword, input.NewPassword); err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Password changed", nil)
	}
}
