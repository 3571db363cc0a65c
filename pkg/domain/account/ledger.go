package account

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/communitybank/corebank/pkg/money"
)

// TxKind classifies a ledger entry.
type TxKind string

// Ledger entry kinds.
const (
	TxDeposit          TxKind = "deposit"
	TxWithdrawal       TxKind = "withdrawal"
	TxTransferIn       TxKind = "transfer_in"
	TxTransferOut      TxKind = "transfer_out"
	TxInterest         TxKind = "interest"
	TxFee              TxKind = "fee"
	TxLoanDisbursement TxKind = "loan_disbursement"
	TxLoanPayment      TxKind = "loan_payment"
	TxReversal         TxKind = "reversal"
)

// Transaction is an immutable ledger record. Only the Reversed flag may be
// set after creation; setting it does not itself undo the balance change.
type Transaction struct {
	ID           int64 // monotonic per account, starts at 1
	Kind         TxKind
	Amount       money.Money // always non-negative; Kind carries the direction
	Timestamp    time.Time
	Description  string
	BalanceAfter money.Money // account balance snapshot after the mutation
	Reference    string
	// RelatedID links the counterpart entity: the other account of a
	// transfer, or the loan of a disbursement or payment.
	RelatedID string
	Reversed  bool
}

// refSeq is the process-wide reference number sequence. A monotonic counter
// is collision-free under load, unlike timestamp-plus-random schemes.
var refSeq atomic.Uint64

// NewReferenceNumber returns the next unique transaction reference.
func NewReferenceNumber() string {
	return fmt.Sprintf("TXN%012d", refSeq.Add(1))
}

// Ledger is the append-only, per-account sequence of transactions. Entries
// are strictly ordered by creation and never reordered or deleted.
//
// A ledger is not safe for concurrent use on its own; the owning account's
// exclusive lock covers it.
type Ledger struct {
	entries []*Transaction
	nextID  int64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{nextID: 1}
}

// Append records a completed operation and returns the new entry.
func (l *Ledger) Append(
	kind TxKind,
	amount money.Money,
	description string,
	balanceAfter money.Money,
	relatedID string,
	now time.Time,
) *Transaction {
	tx := &Transaction{
		ID:           l.nextID,
		Kind:         kind,
		Amount:       amount,
		Timestamp:    now,
		Description:  description,
		BalanceAfter: balanceAfter,
		Reference:    NewReferenceNumber(),
		RelatedID:    relatedID,
	}
	l.nextID++
	l.entries = append(l.entries, tx)
	return tx
}

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// All returns a copy of every entry in ledger order.
func (l *Ledger) All() []Transaction {
	out := make([]Transaction, len(l.entries))
	for i, tx := range l.entries {
		out[i] = *tx
	}
	return out
}

// Between returns entries whose timestamp date falls within [start, end]
// inclusive, in ledger order. Only the calendar date is compared.
func (l *Ledger) Between(start, end time.Time) []Transaction {
	s, e := dateOf(start), dateOf(end)
	var out []Transaction
	for _, tx := range l.entries {
		d := dateOf(tx.Timestamp)
		if !d.Before(s) && !d.After(e) {
			out = append(out, *tx)
		}
	}
	return out
}

// TotalSince sums the amounts of entries recorded strictly after the cutoff,
// in the smallest currency unit.
func (l *Ledger) TotalSince(cutoff time.Time) int64 {
	var total int64
	for _, tx := range l.entries {
		if tx.Timestamp.After(cutoff) {
			total += tx.Amount.Amount()
		}
	}
	return total
}

// MarkReversed sets the reversed flag on the entry with the given id. The
// flag is settable once and marks only; offsetting the balance is a separate
// transaction.
func (l *Ledger) MarkReversed(id int64) (*Transaction, error) {
	for _, tx := range l.entries {
		if tx.ID != id {
			continue
		}
		if tx.Reversed {
			return nil, fmt.Errorf("%w: id %d", ErrAlreadyReversed, id)
		}
		tx.Reversed = true
		cp := *tx
		return &cp, nil
	}
	return nil, fmt.Errorf("%w %d", ErrTransactionNotFound, id)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
