// Package money provides a value object for monetary amounts.
//
// Invariants:
//   - Amount is always stored in the smallest currency unit (e.g., cents for USD).
//   - All arithmetic operations require matching currencies.
//   - Amounts may be negative; account policies decide whether a negative
//     balance is acceptable (e.g., checking overdraft).
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/communitybank/corebank/pkg/currency"
)

var (
	// ErrInvalidAmount is returned when an amount cannot be represented in
	// the currency's smallest unit.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountExceedsMaxSafeInt is returned when an amount or an arithmetic
	// result exceeds the maximum safely representable value.
	ErrAmountExceedsMaxSafeInt = errors.New("amount exceeds maximum safe integer value")

	// ErrUnsupportedCurrency is returned when a currency code is outside the
	// supported set.
	ErrUnsupportedCurrency = errors.New("currency not supported")

	// ErrCurrencyMismatch is returned when performing operations on money
	// values with different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// maxSafeFloat bounds float64 inputs so the smallest-unit conversion cannot
// silently lose integer precision (2^53).
const maxSafeFloat = float64(1 << 53)

// Money represents a monetary value in a specific currency.
type Money struct {
	amount   int64
	currency currency.Code
}

// New creates a Money value from a major-unit amount (e.g., dollars),
// rounding half away from zero to the currency's smallest unit.
func New(amount float64, code currency.Code) (Money, error) {
	if !currency.IsSupported(code) {
		return Money{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	scaled := amount * math.Pow10(code.Decimals())
	if math.Abs(scaled) >= maxSafeFloat {
		return Money{}, fmt.Errorf("%w: %v %s", ErrAmountExceedsMaxSafeInt, amount, code)
	}
	return Money{amount: int64(math.Round(scaled)), currency: code}, nil
}

// Must creates a Money value and panics on error. Intended for constants and
// test fixtures where the input is known to be valid.
func Must(amount float64, code currency.Code) Money {
	m, err := New(amount, code)
	if err != nil {
		panic(fmt.Sprintf("money.Must(%v, %v): %v", amount, code, err))
	}
	return m
}

// FromSmallestUnit creates a Money value directly from the smallest currency
// unit (e.g., cents).
func FromSmallestUnit(amount int64, code currency.Code) (Money, error) {
	if !currency.IsSupported(code) {
		return Money{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return Money{amount: amount, currency: code}, nil
}

// Zero returns a zero amount in the given currency.
func Zero(code currency.Code) Money {
	return Money{amount: 0, currency: code}
}

// Amount returns the value in the smallest currency unit.
func (m Money) Amount() int64 { return m.amount }

// Float returns the value in major units (e.g., dollars). The result is for
// display and rate math; exact comparisons must use Amount.
func (m Money) Float() float64 {
	return float64(m.amount) / math.Pow10(m.currency.Decimals())
}

// Currency returns the currency code.
func (m Money) Currency() currency.Code { return m.currency }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.amount > 0 }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.amount < 0 }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount == 0 }

// SameCurrency reports whether both values share a currency.
func (m Money) SameCurrency(other Money) bool { return m.currency == other.currency }

// Add returns m + other. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	sum := m.amount + other.amount
	if (other.amount > 0 && sum < m.amount) || (other.amount < 0 && sum > m.amount) {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	return Money{amount: sum, currency: m.currency}, nil
}

// Subtract returns m - other. Currencies must match. The result may be
// negative.
func (m Money) Subtract(other Money) (Money, error) {
	return m.Add(Money{amount: -other.amount, currency: other.currency})
}

// Equals reports whether both values have the same currency and amount.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount == other.amount
}

// GreaterThan reports m > other. Currencies must match.
func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.checkCurrency(other); err != nil {
		return false, err
	}
	return m.amount > other.amount, nil
}

// GreaterThanOrEqual reports m >= other. Currencies must match.
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if err := m.checkCurrency(other); err != nil {
		return false, err
	}
	return m.amount >= other.amount, nil
}

// Negate returns the value with its sign flipped.
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// String renders the amount in major units with the currency code appended.
func (m Money) String() string {
	return fmt.Sprintf("%.*f %s", m.currency.Decimals(), m.Float(), m.currency)
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"amount":   m.amount,
		"currency": m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	var aux struct {
		Amount   int64         `json:"amount"`
		Currency currency.Code `json:"currency"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if !currency.IsSupported(aux.Currency) {
		return fmt.Errorf("%w: %s", ErrUnsupportedCurrency, aux.Currency)
	}
	m.amount = aux.Amount
	m.currency = aux.Currency
	return nil
}

func (m Money) checkCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return nil
}
