// Package kvstore provides a generic, thread-safe, in-memory key-value
// store with deterministic insertion-order iteration, plus a simulated
// clock. It backs the account directory and session registry.
package kvstore

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Store is a generic, thread-safe, in-memory store for values of type T.
// T must be a struct that can be marshaled/unmarshaled to JSON.
type Store[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string // insertion order for deterministic listing
}

// New creates an empty Store.
func New[T any]() *Store[T] {
	return &Store[T]{
		items: make(map[string]T),
		order: make([]string, 0),
	}
}

// Set stores a value under the given key. If the key already exists it is
// overwritten but its position in the insertion order is preserved.
func (s *Store[T]) Set(key string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; !exists {
		s.order = append(s.order, key)
	}
	s.items[key] = item
}

// Get retrieves a value by key. Returns the value and true if found,
// zero value and false otherwise.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[key]
	return item, ok
}

// Delete removes a value by key. Returns true if the key existed.
func (s *Store[T]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; !exists {
		return false
	}
	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns all values in insertion order.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]T, 0, len(s.order))
	for _, k := range s.order {
		result = append(result, s.items[k])
	}
	return result
}

// Keys returns all keys in insertion order.
func (s *Store[T]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Count returns the number of values in the store.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Filter returns values that match the given predicate, in insertion order.
func (s *Store[T]) Filter(predicate func(key string, item T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []T
	for _, k := range s.order {
		if predicate(k, s.items[k]) {
			result = append(result, s.items[k])
		}
	}
	return result
}

// Reset clears all values.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
	s.order = make([]string, 0)
}

// Snapshot returns all values as a JSON-serializable map.
func (s *Store[T]) Snapshot() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]T, len(s.items))
	for k, v := range s.items {
		snapshot[k] = v
	}
	return snapshot
}

// LoadSnapshot replaces all values from a map. Existing values are
// cleared. Keys are sorted to keep iteration order deterministic across
// restore cycles.
func (s *Store[T]) LoadSnapshot(snapshot map[string]T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T, len(snapshot))
	s.order = make([]string, 0, len(snapshot))
	for k, v := range snapshot {
		s.items[k] = v
		s.order = append(s.order, k)
	}
	sort.Strings(s.order)
}

// MarshalJSON serializes the store to JSON (the items map).
func (s *Store[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// UnmarshalJSON deserializes JSON into the store, replacing existing values.
func (s *Store[T]) UnmarshalJSON(data []byte) error {
	var snapshot map[string]T
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	s.LoadSnapshot(snapshot)
	return nil
}

// Clock provides an adjustable clock so time-window analytics can be
// exercised deterministically through the ops control plane.
type Clock struct {
	mu     sync.RWMutex
	offset time.Duration
}

// NewClock creates a clock with no offset.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current time plus any configured offset.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Now().Add(c.offset)
}

// Advance moves the clock forward by the given duration.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
}

// Reset resets the clock offset to zero.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = 0
}

// Offset returns the current clock offset.
func (c *Clock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}
