package webapi

import (
	"strconv"

	"github.com/communitybank/corebank/pkg/config"
	"github.com/communitybank/corebank/pkg/middleware"
	"github.com/communitybank/corebank/pkg/service/bank"
	"github.com/gofiber/fiber/v2"
)

// AdminRoutes exposes the operational surface: enumeration, batch sweeps,
// loan decisions and reversals. Authentication is the same bearer token as
// the customer surface; deployments that need a separate back-office realm
// put it behind their own gateway.
func AdminRoutes(app *fiber.App, svc *bank.Service, cfg *config.Jwt) {
	protected := middleware.JwtProtected(cfg)
	admin := app.Group("/admin", protected)

	admin.Get("/summary", GetSummary(svc))
	admin.Get("/customers", ListCustomers(svc))
	admin.Get("/accounts", ListAccounts(svc))
	admin.Get("/loans", ListLoans(svc))
	admin.Get("/fraud-alerts", ListFraudAlerts(svc))
	admin.Post("/jobs/interest", RunInterestSweep(svc))
	admin.Post("/jobs/fees", RunFeeSweep(svc))
	admin.Post("/loan/:id/approve", ApproveLoan(svc))
	admin.Post("/loan/:id/default", DefaultLoan(svc))
	admin.Post("/account/:id/transactions/:txid/reverse", ReverseTransaction(svc))
}

// GetSummary returns the aggregate registry summary.
func GetSummary(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return SuccessResponseJSON(c, fiber.StatusOK, "Summary generated", svc.Summary())
	}
}

// ListCustomers enumerates all registered customers.
func ListCustomers(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customers := svc.ListCustomers()
		out := make([]CustomerRead, 0, len(customers))
		for _, cust := range customers {
			out = append(out, toCustomerRead(cust))
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Customers found", out)
	}
}

// ListAccounts enumerates all accounts.
func ListAccounts(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accounts := svc.ListAccounts()
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

// ListLoans enumerates all loans.
func ListLoans(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loans := svc.ListLoans()
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

// ListFraudAlerts returns the recorded fraud rejections.
func ListFraudAlerts(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return SuccessResponseJSON(c, fiber.StatusOK, "Fraud alerts found", svc.FraudAlerts())
	}
}

// RunInterestSweep triggers the monthly interest batch job.
func RunInterestSweep(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		credited := svc.CreditMonthlyInterest()
		return SuccessResponseJSON(c, fiber.StatusOK, "Interest sweep completed", fiber.Map{"credited": credited})
	}
}

// RunFeeSweep triggers the maintenance fee batch job. Every invocation
// charges; the caller owns the cadence.
func RunFeeSweep(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		charged := svc.ChargeMaintenanceFees()
		return SuccessResponseJSON(c, fiber.StatusOK, "Fee sweep completed", fiber.Map{"charged": charged})
	}
}

// ApproveLoan approves a pending loan and disburses the principal.
func ApproveLoan(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := svc.ApproveLoan(c.Params("id")); err != nil {
			return DomainErrorJSON(c, err)
		}
		snap, err := svc.LoanSnapshot(c.Params("id"))
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Loan approved", toLoanRead(snap))
	}
}

// DefaultLoan marks an active loan defaulted.
func DefaultLoan(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DefaultLoan(c.Params("id")); err != nil {
			return DomainErrorJSON(c, err)
		}
		snap, err := svc.LoanSnapshot(c.Params("id"))
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Loan defaulted", toLoanRead(snap))
	}
}

// ReverseTransaction marks a ledger entry reversed and posts the offsetting
// entry.
func ReverseTransaction(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		txID, err := strconv.ParseInt(c.Params("txid"), 10, 64)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", "transaction id must be an integer")
		}
		var input ReverseInput
		// Body is optional; a bare POST reverses without a reason.
		_ = c.BodyParser(&input)

		offset, err := svc.ReverseTransaction(c.Params("id"), txID, input.Reason)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transaction reversed", toTransactionRead(*offset))
	}
}
