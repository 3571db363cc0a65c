// Package customer defines the customer entity.
//
// A customer owns zero or more accounts by reference; the registry keeps the
// directory and resolves the relation. The credential token is opaque to the
// core: hashing and verification live behind the auth service.
package customer

import (
	"strings"
	"time"
)

// Customer represents a registered bank customer.
type Customer struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Address         string
	DateOfBirth     time.Time
	CreatedAt       time.Time
	CredentialToken string
}

// FullName returns the customer's display name.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// SetCredentialToken replaces the stored credential reference, e.g. after a
// password change. The core never inspects the token's internals.
func (c *Customer) SetCredentialToken(token string) {
	c.CredentialToken = token
}
