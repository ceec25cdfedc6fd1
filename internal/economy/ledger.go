// Package economy tracks the settlement's money.
package economy

import (
	"errors"
	"fmt"
)

// ErrInsolvent is returned when a debit exceeds the balance. It ends the run.
var ErrInsolvent = errors.New("insolvent")

// Ledger is the single unsigned balance of a run.
type Ledger struct {
	balance uint64

	credited uint64 // lifetime totals, for run summaries
	debited  uint64
}

// NewLedger creates a ledger holding the given opening balance.
func NewLedger(opening uint64) *Ledger {
	return &Ledger{balance: opening}
}

// Credit adds amount unconditionally.
func (l *Ledger) Credit(amount uint64) {
	l.balance += amount
	l.credited += amount
}

// Debit subtracts amount. A debit larger than the balance leaves the balance
// untouched and returns ErrInsolvent.
func (l *Ledger) Debit(amount uint64) error {
	if amount > l.balance {
		return fmt.Errorf("debit %d with balance %d: %w", amount, l.balance, ErrInsolvent)
	}
	l.balance -= amount
	l.debited += amount
	return nil
}

// Balance returns the current balance.
func (l *Ledger) Balance() uint64 {
	return l.balance
}

// Totals returns the lifetime credited and debited amounts.
func (l *Ledger) Totals() (credited, debited uint64) {
	return l.credited, l.debited
}
