package webapi

import (
	"github.com/communitybank/corebank/pkg/config"
	"github.com/communitybank/corebank/pkg/middleware"
	"github.com/communitybank/corebank/pkg/service/bank"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func LoanRoutes(app *fiber.App, svc *bank.Service, cfg *config.Jwt) {
	protected := middleware.JwtProtected(cfg)
	app.Post("/loan", protected, ApplyForLoan(svc))
	app.Get("/loan/:id", protected, GetLoan(svc))
	app.Post("/loan/:id/payment", protected, MakeLoanPayment(svc))
}

// ownedLoan resolves the path loan and checks its linked account belongs to
// the authenticated customer.
func ownedLoan(c *fiber.Ctx, svc *bank.Service) (loanID string, err error) {
	customerID, err := CurrentCustomerID(c)
	if err != nil {
		return "", err
	}
	l, err := svc.Loan(c.Params("id"))
	if err != nil {
		return "", err
	}
	a, err := svc.Account(l.AccountID)
	if err != nil {
		return "", err
	}
	if a.CustomerID != customerID {
		return "", bank.ErrLoanNotFound
	}
	return l.ID, nil
}

// ApplyForLoan files a loan application against an owned account.
func ApplyForLoan(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := CurrentCustomerID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		input, err := BindAndValidate[LoanApplyInput](c)
		if input == nil {
			return err
		}
		a, err := svc.Account(input.AccountID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		if a.CustomerID != customerID {
			return DomainErrorJSON(c, bank.ErrAccountNotFound)
		}
		l, err := svc.ApplyForLoan(input.AccountID, decimal.NewFromFloat(input.Principal), input.TermMonths)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		snap, err := svc.LoanSnapshot(l.ID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Loan application filed", toLoanRead(snap))
	}
}

// GetLoan returns one of the authenticated customer's loans.
func GetLoan(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loanID, err := ownedLoan(c, svc)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		snap, err := svc.LoanSnapshot(loanID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Loan found", toLoanRead(snap))
	}
}

// MakeLoanPayment applies a payment to an owned active loan.
func MakeLoanPayment(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loanID, err := ownedLoan(c, svc)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		input, err := BindAndValidate[AmountInput](c)
		if input == nil {
			return err
		}
		p, err := svc.MakeLoanPayment(loanID, decimal.NewFromFloat(input.Amount))
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		snap, err := svc.LoanSnapshot(loanID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Payment applied", fiber.Map{
			"payment": fiber.Map{
				"id":                p.ID,
				"amount":            p.Amount.String(),
				"interest_portion":  p.InterestPortion.String(),
				"principal_portion": p.PrincipalPortion.String(),
				"remaining_after":   p.RemainingAfter.String(),
				"reference":         p.Reference,
			},
			"loan": toLoanRead(snap),
		})
	}
}
