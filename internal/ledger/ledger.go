// Package ledger holds the single simulated account's cash balance.
package ledger

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Ledger is mutated only by settlement credits and explicit manual
// adjustments (deposit, reset). There is no negative-balance floor: losing
// fills may drive the balance below zero, and account reset is the recovery
// path.
type Ledger struct {
	mu      sync.RWMutex
	balance decimal.Decimal
}

// New creates a ledger with the given opening balance.
func New(initial decimal.Decimal) *Ledger {
	return &Ledger{balance: initial.Round(2)}
}

// Adjust adds delta to the balance, rounding to 2 decimal places, and
// returns the new balance.
func (l *Ledger) Adjust(delta decimal.Decimal) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = l.balance.Add(delta).Round(2)
	return l.balance
}

// Reset sets the balance to an explicit value.
func (l *Ledger) Reset(value decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = value.Round(2)
}

// Balance returns the current balance.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}
