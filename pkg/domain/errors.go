// Package domain holds the error taxonomy shared by all banking entities.
//
// Every rejection is raised strictly before any state mutation: a failed
// operation never leaves a partial ledger entry or balance change behind.
// Entity packages wrap these sentinels so callers can branch on the broad
// category with errors.Is while still seeing the specific cause.
package domain

import "errors"

var (
	// ErrValidation is returned when an amount or identity field is malformed.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when an account, customer or loan id is unknown.
	ErrNotFound = errors.New("not found")
	// ErrState is returned when an operation is blocked by the entity's status.
	ErrState = errors.New("operation not allowed in current state")
	// ErrLimitExceeded is returned on insufficient funds or a limit breach.
	ErrLimitExceeded = errors.New("limit exceeded")
	// ErrFraudSuspicion is returned when a transfer is blocked by the fraud heuristic.
	ErrFraudSuspicion = errors.New("transaction flagged as potentially fraudulent")
)
