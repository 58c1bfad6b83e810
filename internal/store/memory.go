package store

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/loyaltypro/loyaltypro/pkg/kvstore"
)

var (
	// ErrUsernameTaken is returned when registering an already-used username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrBadCredentials is returned on a failed login.
	ErrBadCredentials = errors.New("invalid username or password")
	// ErrAccountNotFound is returned when the owning account is missing.
	ErrAccountNotFound = errors.New("account not found")
)

// MemoryStore holds the account directory and session registry in memory.
// Durability is a full JSON snapshot, written by the caller after each
// mutation and reloaded at startup.
type MemoryStore struct {
	Accounts *kvstore.Store[Account] // keyed by username
	Sessions *kvstore.Store[Session] // keyed by session ID
	Clock    *kvstore.Clock

	// txnMu serializes the read-modify-write cycle on an account's
	// customer set. Correctness of apply-transaction relies on the
	// whole cycle being atomic with respect to other writers.
	txnMu sync.Mutex
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{
		Accounts: kvstore.New[Account](),
		Sessions: kvstore.New[Session](),
		Clock:    kvstore.NewClock(),
	}
}

// RegisterAccount creates a new account with an empty customer set.
// Fails with ErrUsernameTaken if the username is already present.
func (s *MemoryStore) RegisterAccount(name, username, password string) (Account, error) {
	s.txnMu.Lock()
	defer s.txnMu.Unlock()

	if _, exists := s.Accounts.Get(username); exists {
		return Account{}, ErrUsernameTaken
	}
	acct := Account{
		Username:  username,
		Password:  password,
		Name:      name,
		Customers: []Customer{},
	}
	s.Accounts.Set(username, acct)
	return acct, nil
}

// Authenticate checks a username/password pair.
func (s *MemoryStore) Authenticate(username, password string) (Account, error) {
	acct, ok := s.Accounts.Get(username)
	if !ok || acct.Password != password {
		return Account{}, ErrBadCredentials
	}
	return acct, nil
}

// GetAccount returns the account for a username.
func (s *MemoryStore) GetAccount(username string) (Account, bool) {
	return s.Accounts.Get(username)
}

// UpdateCustomers applies fn to the account's customer set under the
// write lock and swaps in the returned slice. If fn returns an error
// nothing changes. fn receives the stored slice and must treat it as
// read-only, returning a fresh slice for the new state.
func (s *MemoryStore) UpdateCustomers(username string, fn func([]Customer) ([]Customer, error)) error {
	s.txnMu.Lock()
	defer s.txnMu.Unlock()

	acct, ok := s.Accounts.Get(username)
	if !ok {
		return ErrAccountNotFound
	}
	updated, err := fn(acct.Customers)
	if err != nil {
		return err
	}
	acct.Customers = updated
	s.Accounts.Set(username, acct)
	return nil
}

// FindCustomer looks up a customer by mobile within an account.
func (s *MemoryStore) FindCustomer(username, mobile string) (Customer, bool) {
	acct, ok := s.Accounts.Get(username)
	if !ok {
		return Customer{}, false
	}
	for _, c := range acct.Customers {
		if c.Mobile == mobile {
			return c.Clone(), true
		}
	}
	return Customer{}, false
}

type stateSnapshot struct {
	Accounts map[string]Account `json:"accounts"`
	Sessions map[string]Session `json:"sessions"`
}

// Snapshot returns the full state as a JSON-serializable value.
func (s *MemoryStore) Snapshot() any {
	return stateSnapshot{
		Accounts: s.Accounts.Snapshot(),
		Sessions: s.Sessions.Snapshot(),
	}
}

// LoadState replaces the full state from a JSON snapshot.
func (s *MemoryStore) LoadState(data []byte) error {
	var snap stateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	if snap.Accounts != nil {
		s.Accounts.LoadSnapshot(snap.Accounts)
	}
	if snap.Sessions != nil {
		s.Sessions.LoadSnapshot(snap.Sessions)
	}
	return nil
}

// Reset clears all state.
func (s *MemoryStore) Reset() {
	s.Accounts.Reset()
	s.Sessions.Reset()
	s.Clock.Reset()
}
