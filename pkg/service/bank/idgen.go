package bank

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// IdentifierGenerator mints ids for the three entity kinds. Implementations
// must return unique, stable values; the bank never parses an id beyond
// using it as a map key.
type IdentifierGenerator interface {
	CustomerID() string
	AccountID() string
	LoanID() string
}

// sequentialIDs is the default generator: customers and loans get a short
// random suffix, accounts get a monotonically increasing number so ids sort
// in creation order.
type sequentialIDs struct {
	acctSeq atomic.Int64
}

func newSequentialIDs() *sequentialIDs {
	g := &sequentialIDs{}
	g.acctSeq.Store(10000)
	return g
}

func (g *sequentialIDs) CustomerID() string {
	return "CUST" + randomSuffix()
}

func (g *sequentialIDs) AccountID() string {
	return fmt.Sprintf("ACCT%08d", g.acctSeq.Add(1)-1)
}

func (g *sequentialIDs) LoanID() string {
	return "LOAN" + randomSuffix()
}

func randomSuffix() string {
	return strings.ToUpper(uuid.New().String()[:8])
}
