package kvstore

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// testItem is a simple struct used throughout store tests.
type testItem struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestSetAndGet(t *testing.T) {
	s := New[testItem]()
	s.Set("alpha", testItem{Name: "alpha", Value: 1})

	got, ok := s.Get("alpha")
	if !ok {
		t.Fatal("expected item to be found")
	}
	if got.Name != "alpha" || got.Value != 1 {
		t.Errorf("unexpected item: %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := New[testItem]()
	_, ok := s.Get("nonexistent")
	if ok {
		t.Error("expected ok=false for missing key")
	}
}

func TestSetOverwritePreservesOrder(t *testing.T) {
	s := New[testItem]()
	s.Set("a", testItem{Name: "first"})
	s.Set("b", testItem{Name: "second"})
	s.Set("a", testItem{Name: "third"})

	if s.Count() != 2 {
		t.Fatalf("expected count 2 after overwrite, got %d", s.Count())
	}
	keys := s.Keys()
	if keys[0] != "a" || keys[1] != "b" {
		t.Errorf("overwrite must not move the key: %v", keys)
	}
	got, _ := s.Get("a")
	if got.Name != "third" {
		t.Errorf("expected overwritten value, got %+v", got)
	}
}

func TestDelete(t *testing.T) {
	s := New[testItem]()
	s.Set("a", testItem{Name: "a"})

	if !s.Delete("a") {
		t.Error("expected Delete to return true for existing key")
	}
	if s.Delete("a") {
		t.Error("expected Delete to return false for already-deleted key")
	}
	if s.Count() != 0 {
		t.Errorf("expected empty store after delete, got count %d", s.Count())
	}
}

func TestListInsertionOrder(t *testing.T) {
	s := New[testItem]()
	s.Set("c", testItem{Value: 3})
	s.Set("a", testItem{Value: 1})
	s.Set("b", testItem{Value: 2})

	items := s.List()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Value != 3 || items[1].Value != 1 || items[2].Value != 2 {
		t.Errorf("expected insertion order, got %+v", items)
	}
}

func TestFilter(t *testing.T) {
	s := New[testItem]()
	s.Set("a", testItem{Value: 1})
	s.Set("b", testItem{Value: 2})
	s.Set("c", testItem{Value: 3})

	odd := s.Filter(func(_ string, it testItem) bool { return it.Value%2 == 1 })
	if len(odd) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(odd))
	}
	if odd[0].Value != 1 || odd[1].Value != 3 {
		t.Errorf("expected filter to preserve order, got %+v", odd)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New[testItem]()
	s.Set("b", testItem{Name: "b", Value: 2})
	s.Set("a", testItem{Name: "a", Value: 1})

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	restored := New[testItem]()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if restored.Count() != 2 {
		t.Fatalf("expected 2 items after restore, got %d", restored.Count())
	}
	// Restored order is sorted by key for determinism.
	keys := restored.Keys()
	if keys[0] != "a" || keys[1] != "b" {
		t.Errorf("expected sorted keys after restore, got %v", keys)
	}
}

func TestReset(t *testing.T) {
	s := New[testItem]()
	s.Set("a", testItem{})
	s.Reset()
	if s.Count() != 0 {
		t.Errorf("expected empty store after reset, got %d", s.Count())
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New[testItem]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Set("shared", testItem{Value: n})
		}(i)
		go func() {
			defer wg.Done()
			s.Get("shared")
			s.List()
		}()
	}
	wg.Wait()
	if s.Count() != 1 {
		t.Errorf("expected a single key, got %d", s.Count())
	}
}

func TestClockAdvance(t *testing.T) {
	c := NewClock()
	before := c.Now()
	c.Advance(24 * time.Hour)
	after := c.Now()

	if diff := after.Sub(before); diff < 23*time.Hour {
		t.Errorf("expected clock to jump ~24h, got %v", diff)
	}
	if c.Offset() != 24*time.Hour {
		t.Errorf("expected offset 24h, got %v", c.Offset())
	}

	c.Reset()
	if c.Offset() != 0 {
		t.Errorf("expected zero offset after reset, got %v", c.Offset())
	}
}
