// Package ledger implements the points ledger: computing loyalty points
// for a bill/cash pair and applying transactions to a customer set.
// All functions are pure; callers swap the returned state in atomically.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loyaltypro/loyaltypro/internal/store"
)

var (
	// ErrInvalidBill rejects a non-positive bill amount.
	ErrInvalidBill = errors.New("invalid bill amount")
	// ErrInsufficientCash rejects cash given below the bill amount.
	ErrInsufficientCash = errors.New("cash given cannot be less than bill amount")
	// ErrInvalidPIN rejects a malformed PIN for a first transaction.
	ErrInvalidPIN = errors.New("pin must be 4 digits")
	// ErrPINMismatch rejects a transaction whose PIN does not match the
	// customer's stored credential.
	ErrPINMismatch = errors.New("incorrect pin")
)

// ComputePoints returns the loyalty points earned for a bill/cash pair:
// the change returned to the customer, floored to whole points. The
// bill must be positive and the cash must cover it; otherwise no points
// are computed and the transaction must be rejected.
func ComputePoints(bill, cashGiven decimal.Decimal) (int64, error) {
	if bill.LessThanOrEqual(decimal.Zero) {
		return 0, ErrInvalidBill
	}
	if cashGiven.LessThan(bill) {
		return 0, ErrInsufficientCash
	}
	return cashGiven.Sub(bill).Floor().IntPart(), nil
}

// Transaction is one point-earning event to apply to a customer set.
// Points must already have been computed (and the cash/bill pair
// validated) via ComputePoints.
type Transaction struct {
	Mobile string
	Name   string
	PIN    string
	Bill   decimal.Decimal
	Points int64
	Now    time.Time
}

// ApplyTransaction applies tx to the customer set and returns the new
// set plus the affected customer. The input slice is never mutated: on
// success a fresh slice is returned for the caller to swap in; on error
// the state is unchanged.
//
// An existing mobile must present its stored PIN. A new mobile sets its
// PIN with this first transaction and gets a guest name derived from
// the mobile's last four digits when no name is given.
func ApplyTransaction(customers []store.Customer, tx Transaction) ([]store.Customer, store.Customer, error) {
	if tx.Bill.LessThanOrEqual(decimal.Zero) {
		return nil, store.Customer{}, ErrInvalidBill
	}

	entry := store.TransactionRecord{
		ID:     uuid.NewString(),
		Date:   tx.Now.Format(time.RFC3339),
		Bill:   tx.Bill,
		Points: tx.Points,
	}

	for i, c := range customers {
		if c.Mobile != tx.Mobile {
			continue
		}
		if c.PIN != tx.PIN {
			return nil, store.Customer{}, ErrPINMismatch
		}

		updated := c.Clone()
		updated.Points += tx.Points
		updated.TotalSpent = updated.TotalSpent.Add(tx.Bill)
		updated.History = append(updated.History, entry)

		out := make([]store.Customer, len(customers))
		copy(out, customers)
		out[i] = updated
		return out, updated, nil
	}

	if !validPIN(tx.PIN) {
		return nil, store.Customer{}, ErrInvalidPIN
	}

	name := tx.Name
	if name == "" {
		name = "Guest-" + lastFour(tx.Mobile)
	}
	created := store.Customer{
		Mobile:     tx.Mobile,
		Name:       name,
		PIN:        tx.PIN,
		Points:     tx.Points,
		TotalSpent: tx.Bill,
		History:    []store.TransactionRecord{entry},
	}

	out := make([]store.Customer, len(customers), len(customers)+1)
	copy(out, customers)
	out = append(out, created)
	return out, created, nil
}

func validPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func lastFour(mobile string) string {
	if len(mobile) <= 4 {
		return mobile
	}
	return mobile[len(mobile)-4:]
}
