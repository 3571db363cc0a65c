package webapi

import (
	"time"

	"github.com/communitybank/corebank/pkg/config"
	"github.com/communitybank/corebank/pkg/currency"
	"github.com/communitybank/corebank/pkg/domain/account"
	"github.com/communitybank/corebank/pkg/middleware"
	"github.com/communitybank/corebank/pkg/money"
	"github.com/communitybank/corebank/pkg/service/bank"
	"github.com/gofiber/fiber/v2"
)

func AccountRoutes(app *fiber.App, svc *bank.Service, cfg *config.Jwt) {
	protected := middleware.JwtProtected(cfg)
	app.Post("/account", protected, OpenAccount(svc))
	app.Get("/account/:id", protected, GetAccount(svc))
	app.Get("/account/:id/transactions", protected, GetTransactions(svc))
	app.Get("/account/:id/statement", protected, GetStatement(svc))
	app.Post("/account/:id/deposit", protected, Deposit(svc))
	app.Post("/account/:id/withdraw", protected, Withdraw(svc))
	app.Post("/account/:id/freeze", protected, accountStatusChange(svc, svc.FreezeAccount, "Account frozen"))
	app.Post("/account/:id/unfreeze", protected, accountStatusChange(svc, svc.UnfreezeAccount, "Account unfrozen"))
	app.Post("/account/:id/suspend", protected, accountStatusChange(svc, svc.SuspendAccount, "Account suspended"))
	app.Post("/account/:id/close", protected, accountStatusChange(svc, svc.CloseAccount, "Account closed"))
}

// ownedAccount resolves the path account and checks it belongs to the
// authenticated customer.
func ownedAccount(c *fiber.Ctx, svc *bank.Service) (*account.Account, error) {
	customerID, err := CurrentCustomerID(c)
	if err != nil {
		return nil, err
	}
	a, err := svc.Account(c.Params("id"))
	if err != nil {
		return nil, err
	}
	if a.CustomerID != customerID {
		// Report not-found rather than forbidden to avoid leaking which
		// account ids exist.
		return nil, bank.ErrAccountNotFound
	}
	return a, nil
}

func parseAmount(value float64, code currency.Code) (money.Money, error) {
	if code == "" {
		code = currency.DefaultCode
	}
	return money.New(value, code)
}

// OpenAccount creates an account for the authenticated customer.
func OpenAccount(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := CurrentCustomerID(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		input, err := BindAndValidate[OpenAccountInput](c)
		if input == nil {
			return err
		}
		opening, err := parseAmount(input.OpeningBalance, currency.Code(input.Currency))
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		a, err := svc.OpenAccount(bank.OpenAccountParams{
			CustomerID:     customerID,
			Variant:        account.Variant(input.Variant),
			OpeningBalance: opening,
			Password:       input.Password,
			InterestRate:   input.InterestRate,
			BusinessName:   input.BusinessName,
			TaxID:          input.TaxID,
		})
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		snap, err := svc.AccountSnapshot(a.ID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Account opened", toAccountRead(snap))
	}
}

// GetAccount returns one of the authenticated customer's accounts.
func GetAccount(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := ownedAccount(c, svc)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		snap, err := svc.AccountSnapshot(a.ID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Account found", toAccountRead(snap))
	}
}

// GetTransactions returns the full ledger of an owned account.
func GetTransactions(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := ownedAccount(c, svc)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		txs, err := svc.AccountTransactions(a.ID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transactions found", toTransactionReads(txs))
	}
}

// GetStatement returns the ledger over ?start=...&end=... (YYYY-MM-DD,
// inclusive) with credit and debit totals.
func GetStatement(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := ownedAccount(c, svc)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		start, err := time.Parse("2006-01-02", c.Query("start"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", "start must be YYYY-MM-DD")
		}
		end, err := time.Parse("2006-01-02", c.Query("end"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", "end must be YYYY-MM-DD")
		}
		st, err := svc.Statement(a.ID, start, end)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Statement generated", toStatementRead(st))
	}
}

// Deposit credits an owned account.
func Deposit(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := ownedAccount(c, svc)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		input, err := BindAndValidate[AmountInput](c)
		if input == nil {
			return err
		}
		amount, err := parseAmount(input.Amount, a.Currency())
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		tx, err := svc.Deposit(a.ID, amount, input.Description)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Deposit successful", toTransactionRead(*tx))
	}
}

// Withdraw debits an owned account.
func Withdraw(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := ownedAccount(c, svc)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		input, err := BindAndValidate[AmountInput](c)
		if input == nil {
			return err
		}
		amount, err := parseAmount(input.Amount, a.Currency())
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		tx, err := svc.Withdraw(a.ID, amount, input.Description)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal successful", toTransactionRead(*tx))
	}
}

func accountStatusChange(svc *bank.Service, op func(string) error, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := ownedAccount(c, svc)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		if err := op(a.ID); err != nil {
			return DomainErrorJSON(c, err)
		}
		snap, err := svc.AccountSnapshot(a.ID)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, message, toAccountRead(snap))
	}
}
