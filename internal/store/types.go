package store

import "github.com/shopspring/decimal"

// JSON field names follow the dashboard's original export format so
// state snapshots stay loadable across versions.

// TransactionRecord is a single point-earning entry in a customer's history.
// History is append-only; existing entries are never mutated or removed.
type TransactionRecord struct {
	ID     string          `json:"id"`
	Date   string          `json:"date"` // RFC 3339, set at recording time
	Bill   decimal.Decimal `json:"bill"`
	Points int64           `json:"points"`
}

// Customer is a per-mobile loyalty record owned by one account.
// Mobile is the unique key and is immutable once created.
type Customer struct {
	Mobile     string              `json:"mobile"`
	Name       string              `json:"name"`
	PIN        string              `json:"pin"` // 4-digit credential, set at first transaction
	Points     int64               `json:"points"`
	TotalSpent decimal.Decimal     `json:"totalSpent"`
	History    []TransactionRecord `json:"history"`
}

// Clone returns a deep copy so callers can mutate without aliasing the
// stored history slice.
func (c Customer) Clone() Customer {
	out := c
	out.History = make([]TransactionRecord, len(c.History))
	copy(out.History, c.History)
	return out
}

// Account is a business admin tenant. Each account exclusively owns its
// customer records; Customers keeps insertion order, which is the
// store-iteration order used by exports and tie-breaks.
type Account struct {
	Username  string     `json:"username"`
	Password  string     `json:"password"`
	Name      string     `json:"name"` // business display name
	Customers []Customer `json:"customers"`
}

// Session is a logged-in admin session backing a bearer token.
type Session struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
}
