package webapi

import (
	"time"

	"github.com/communitybank/corebank/pkg/domain/account"
	"github.com/communitybank/corebank/pkg/domain/customer"
	"github.com/communitybank/corebank/pkg/domain/loan"
	"github.com/communitybank/corebank/pkg/service/bank"
)

// RegisterCustomerInput represents the request body for customer signup.
type RegisterCustomerInput struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Password    string `json:"password" validate:"required,min=8"`
}

// LoginInput represents the request body for customer authentication.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput carries the contact fields a customer may change.
// Omitted fields keep their current value.
type UpdateProfileInput struct {
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ChangePasswordInput rotates a customer credential.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// OpenAccountInput represents the request body for opening an account.
type OpenAccountInput struct {
	Variant        string  `json:"variant" validate:"required,oneof=savings checking business"`
	OpeningBalance float64 `json:"opening_balance" validate:"gte=0"`
	Currency       string  `json:"currency" validate:"omitempty,len=3"`
	Password       string  `json:"password" validate:"required"`
	InterestRate   float64 `json:"interest_rate" validate:"gte=0"`
	BusinessName   string  `json:"business_name"`
	TaxID          string  `json:"tax_id"`
}

// AmountInput is the request body for deposits, withdrawals and loan
// payments.
type AmountInput struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description"`
}

// TransferInput represents the request body for a funds transfer.
type TransferInput struct {
	ToAccountID string  `json:"to_account_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description"`
}

// LoanApplyInput represents a loan application.
type LoanApplyInput struct {
	AccountID  string  `json:"account_id" validate:"required"`
	Principal  float64 `json:"principal" validate:"required,gt=0"`
	TermMonths int     `json:"term_months" validate:"required,gt=0"`
}

// ReverseInput carries the optional reason for a transaction reversal.
type ReverseInput struct {
	Reason string `json:"reason"`
}

// CustomerRead is the customer projection returned to API clients. The
// credential token never leaves the service layer.
type CustomerRead struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toCustomerRead(c *customer.Customer) CustomerRead {
	return CustomerRead{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

// AccountRead is the account projection returned to API clients.
type AccountRead struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id"`
	Variant      string    `json:"variant"`
	Status       string    `json:"status"`
	Balance      float64   `json:"balance"`
	Currency     string    `json:"currency"`
	InterestRate float64   `json:"interest_rate,omitempty"`
	BusinessName string    `json:"business_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAccountRead(snap account.Snapshot) AccountRead {
	return AccountRead{
		ID:           snap.ID,
		CustomerID:   snap.CustomerID,
		Variant:      string(snap.Variant),
		Status:       string(snap.Status),
		Balance:      snap.Balance.Float(),
		Currency:     string(snap.Balance.Currency()),
		InterestRate: snap.InterestRate,
		BusinessName: snap.BusinessName,
		CreatedAt:    snap.CreatedAt,
	}
}

// TransactionRead is the ledger entry projection returned to API clients.
type TransactionRead struct {
	ID           int64     `json:"id"`
	Kind         string    `json:"kind"`
	Amount       float64   `json:"amount"`
	BalanceAfter float64   `json:"balance_after"`
	Description  string    `json:"description,omitempty"`
	Reference    string    `json:"reference"`
	RelatedID    string    `json:"related_id,omitempty"`
	Reversed     bool      `json:"reversed,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func toTransactionRead(tx account.Transaction) TransactionRead {
	return TransactionRead{
		ID:           tx.ID,
		Kind:         string(tx.Kind),
		Amount:       tx.Amount.Float(),
		BalanceAfter: tx.BalanceAfter.Float(),
		Description:  tx.Description,
		Reference:    tx.Reference,
		RelatedID:    tx.RelatedID,
		Reversed:     tx.Reversed,
		Timestamp:    tx.Timestamp,
	}
}

func toTransactionReads(txs []account.Transaction) []TransactionRead {
	out := make([]TransactionRead, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionRead(tx))
	}
	return out
}

// LoanRead is the loan projection returned to API clients.
type LoanRead struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	Principal       string    `json:"principal"`
	AnnualRate      string    `json:"annual_rate"`
	TermMonths      int       `json:"term_months"`
	MonthlyPayment  string    `json:"monthly_payment"`
	Remaining       string    `json:"remaining"`
	Status          string    `json:"status"`
	NextPaymentDate time.Time `json:"next_payment_date"`
}

func toLoanRead(snap loan.Snapshot) LoanRead {
	return LoanRead{
		ID:              snap.ID,
		AccountID:       snap.AccountID,
		Principal:       snap.Principal.String(),
		AnnualRate:      snap.AnnualRate.String(),
		TermMonths:      snap.TermMonths,
		MonthlyPayment:  snap.MonthlyPayment.String(),
		Remaining:       snap.Remaining.String(),
		Status:          string(snap.Status),
		NextPaymentDate: snap.NextPaymentDate,
	}
}

// StatementRead is the statement projection returned to API clients.
type StatementRead struct {
	AccountID    string            `json:"account_id"`
	CustomerName string            `json:"customer_name"`
	Variant      string            `json:"variant"`
	Start        string            `json:"start"`
	End          string            `json:"end"`
	Balance      float64           `json:"balance"`
	TotalCredits float64           `json:"total_credits"`
	TotalDebits  float64           `json:"total_debits"`
	Entries      []TransactionRead `json:"entries"`
}

func toStatementRead(st *bank.Statement) StatementRead {
	return StatementRead{
		AccountID:    st.AccountID,
		CustomerName: st.CustomerName,
		Variant:      string(st.Variant),
		Start:        st.Start.Format("2006-01-02"),
		End:          st.End.Format("2006-01-02"),
		Balance:      st.Balance.Float(),
		TotalCredits: st.TotalCredits.Float(),
		TotalDebits:  st.TotalDebits.Float(),
		Entries:      toTransactionReads(st.Entries),
	}
}
