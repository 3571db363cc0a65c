// Package currency defines the closed set of currencies the bank serves.
//
// A currency is fixed at account creation and never changes afterwards; all
// amounts attached to an account carry the account's currency.
package currency

// Code represents an ISO 4217 currency code (e.g., "USD").
type Code string

// Supported currency codes.
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
	CAD Code = "CAD"
)

// DefaultCode is the currency used when a caller does not specify one.
var DefaultCode = USD

// supported maps each accepted code to its number of minor-unit decimal places.
var supported = map[Code]int{
	USD: 2,
	EUR: 2,
	GBP: 2,
	JPY: 0, // Japanese Yen has no minor unit
	CAD: 2,
}

// IsSupported reports whether the code belongs to the supported set.
func IsSupported(c Code) bool {
	_, ok := supported[c]
	return ok
}

// Decimals returns the number of minor-unit decimal places for the code.
// Unsupported codes report the conventional two places.
func (c Code) Decimals() int {
	if d, ok := supported[c]; ok {
		return d
	}
	return 2
}

// String returns the string representation of the currency code.
func (c Code) String() string {
	return string(c)
}
