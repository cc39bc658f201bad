// Package ledger provides an in-memory account ledger implementing the
// registry's value-transfer capability. It stands in for the host
// environment's native balance system: every escrow capture and payout is an
// atomic movement between a principal's balance and the registry custody
// pool, recorded in an append-only transaction log for audit.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cloudx-io/auctionledger/core"
)

// TransactionKind labels a ledger movement.
type TransactionKind string

const (
	KindCapture TransactionKind = "capture" // principal -> custody
	KindPayout  TransactionKind = "payout"  // custody -> principal
	KindFund    TransactionKind = "fund"    // external mint into a balance
)

// Transaction records one committed movement.
type Transaction struct {
	ID        string          `json:"id"`
	Kind      TransactionKind `json:"kind"`
	Principal core.Principal  `json:"principal"`
	Amount    uint64          `json:"amount"`
	At        time.Time       `json:"at"`
}

// ErrInsufficientBalance is returned when a movement would overdraw its
// source; the ledger is left unchanged.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger tracks principal balances and the registry custody pool. All
// methods are safe for concurrent use; each movement commits fully or not
// at all.
type Ledger struct {
	mu       sync.Mutex
	balances map[core.Principal]uint64
	custody  uint64
	log      []Transaction
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{balances: make(map[core.Principal]uint64)}
}

// Fund credits a principal's balance from outside the system. Tests and
// demo setups use this to seed bidders.
func (l *Ledger) Fund(p core.Principal, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[p] += amount
	l.record(KindFund, p, amount)
}

// Capture moves amount from the principal's balance into custody.
func (l *Ledger) Capture(from core.Principal, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[from] < amount {
		return fmt.Errorf("capture %d from %q: %w", amount, from, ErrInsufficientBalance)
	}
	l.balances[from] -= amount
	l.custody += amount
	l.record(KindCapture, from, amount)
	return nil
}

// Payout moves amount from custody to the principal's balance.
func (l *Ledger) Payout(to core.Principal, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.custody < amount {
		return fmt.Errorf("pay out %d to %q: %w", amount, to, ErrInsufficientBalance)
	}
	l.custody -= amount
	l.balances[to] += amount
	l.record(KindPayout, to, amount)
	return nil
}

// Balance returns the principal's current balance.
func (l *Ledger) Balance(p core.Principal) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[p]
}

// CustodyBalance returns the value currently held by the registry itself.
// After a full auction lifecycle this exposes any escrow the contract
// retained without a refund path.
func (l *Ledger) CustodyBalance() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.custody
}

// Transactions returns a copy of the committed movement log in order.
func (l *Ledger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, len(l.log))
	copy(out, l.log)
	return out
}

// record appends to the log; callers hold l.mu.
func (l *Ledger) record(kind TransactionKind, p core.Principal, amount uint64) {
	l.log = append(l.log, Transaction{
		ID:        uuid.NewString(),
		Kind:      kind,
		Principal: p,
		Amount:    amount,
		At:        time.Now().UTC(),
	})
}

var _ core.Treasury = (*Ledger)(nil)
