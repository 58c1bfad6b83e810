package api_test

import (
	"net/http"
	"os"
	"strings"
	"testing"
)

func TestPreviewPoints(t *testing.T) {
	e := newEnv(t)
	token := e.register("Shop", "ravi", "secret")

	resp := e.get(token, "/v1/transactions/preview?bill=900&cash=1000")
	resp.AssertStatus(http.StatusOK)
	if got := resp.JSONMap()["points"].(float64); got != 100 {
		t.Errorf("expected 100 points, got %v", got)
	}

	// Fractional change floors.
	resp = e.get(token, "/v1/transactions/preview?bill=100.50&cash=150.25")
	if got := resp.JSONMap()["points"].(float64); got != 49 {
		t.Errorf("expected 49 points, got %v", got)
	}

	e.get(token, "/v1/transactions/preview?bill=abc&cash=100").
		AssertStatus(http.StatusUnprocessableEntity)
	e.get(token, "/v1/transactions/preview?bill=100&cash=99").
		AssertStatus(http.StatusUnprocessableEntity)
	e.get(token, "/v1/transactions/preview?bill=0&cash=100").
		AssertStatus(http.StatusUnprocessableEntity)
}

func TestRecordTransactionNewCustomer(t *testing.T) {
	e := newEnv(t)
	token := e.register("Shop", "ravi", "secret")

	resp := e.recordTxn(token, "9990001111", "Alice", "1234", "900", "1000")
	resp.AssertStatus(http.StatusCreated)

	body := resp.JSONMap()
	if got := body["points_awarded"].(float64); got != 100 {
		t.Errorf("expected 100 points awarded, got %v", got)
	}
	c := body["customer"].(map[string]any)
	if c["name"] != "Alice" || c["mobile"] != "9990001111" {
		t.Errorf("unexpected customer: %v", c)
	}
	if c["points"].(float64) != 100 || c["totalSpent"] != "900" {
		t.Errorf("expected 100 points / 900 spent, got %v", c)
	}
	if len(c["history"].([]any)) != 1 {
		t.Errorf("expected one history entry, got %v", c["history"])
	}
	if _, ok := c["pin"]; ok {
		t.Error("pin must not appear in responses")
	}
}

func TestRecordTransactionGuestName(t *testing.T) {
	e := newEnv(t)
	token := e.register("Shop", "ravi", "secret")

	resp := e.recordTxn(token, "9990001111", "", "1234", "100", "150")
	resp.AssertStatus(http.StatusCreated)
	c := resp.JSONMap()["customer"].(map[string]any)
	if c["name"] != "Guest-1111" {
		t.Errorf("expected Guest-1111, got %v", c["name"])
	}
}

func TestRecordTransactionAccumulates(t *testing.T) {
	e := newEnv(t)
	token := e.register("Shop", "ravi", "secret")

	e.recordTxn(token, "9990001111", "Alice", "1234", "900", "1000").
		AssertStatus(http.StatusCreated)
	resp := e.recordTxn(token, "9990001111", "", "1234", "200", "250")
	resp.AssertStatus(http.StatusCreated)

	c := resp.JSONMap()["customer"].(map[string]any)
	if c["points"].(float64) != 150 || c["totalSpent"] != "1100" {
		t.Errorf("expected 150 points / 1100 spent, got %v", c)
	}
	if c["name"] != "Alice" {
		t.Errorf("existing name must be kept, got %v", c["name"])
	}
	if len(c["history"].([]any)) != 2 {
		t.Errorf("expected two history entries, got %v", c["history"])
	}
}

func TestRecordTransactionWrongPIN(t *testing.T) {
	e := newEnv(t)
	token := e.register("Shop", "ravi", "secret")
	e.recordTxn(token, "9990001111", "Alice", "1234", "900", "1000").
		AssertStatus(http.StatusCreated)

	e.recordTxn(token, "9990001111", "", "9999", "200", "250").
		AssertStatus(http.StatusForbidden).AssertBodyContains("incorrect pin")

	// The failed attempt left the record untouched.
	c := e.get(token, "/v1/customers/9990001111").
		AssertStatus(http.StatusOK).JSONMap()["customer"].(map[string]any)
	if c["points"].(float64) != 100 || len(c["history"].([]any)) != 1 {
		t.Errorf("expected record unchanged after pin mismatch, got %v", c)
	}
}

func TestRecordTransactionValidation(t *testing.T) {
	e := newEnv(t)
	token := e.register("Shop", "ravi", "secret")

	e.recordTxn(token, "", "Alice", "1234", "900", "1000").
		AssertStatus(http.StatusUnprocessableEntity).AssertBodyContains("mobile is required")
	e.recordTxn(token, "9990001111", "Alice", "1234", "0", "100").
		AssertStatus(http.StatusUnprocessableEntity)
	e.recordTxn(token, "9990001111", "Alice", "1234", "100", "99").
		AssertStatus(http.StatusUnprocessableEntity)
	// New customers need a well-formed 4-digit pin.
	e.recordTxn(token, "9990001111", "Alice", "12", "900", "1000").
		AssertStatus(http.StatusUnprocessableEntity)
	e.recordTxn(token, "9990001111", "Alice", "12ab", "900", "1000").
		AssertStatus(http.StatusUnprocessableEntity)
}

func TestRecordTransactionWritesSnapshot(t *testing.T) {
	e := newEnv(t)
	token := e.register("Shop", "ravi", "secret")
	e.recordTxn(token, "9990001111", "Alice", "1234", "900", "1000").
		AssertStatus(http.StatusCreated)

	data, err := os.ReadFile(e.dataFile)
	if err != nil {
		t.Fatalf("expected snapshot written: %v", err)
	}
	if !strings.Contains(string(data), "9990001111") {
		t.Error("expected transaction in snapshot")
	}
}

func TestAccountsAreIsolated(t *testing.T) {
	e := newEnv(t)
	first := e.register("First", "first", "pw")
	second := e.register("Second", "second", "pw")

	e.recordTxn(first, "9990001111", "Alice", "1234", "900", "1000").
		AssertStatus(http.StatusCreated)

	e.get(second, "/v1/customers/9990001111").AssertStatus(http.StatusNotFound)
	customers := e.get(second, "/v1/customers").
		AssertStatus(http.StatusOK).JSONMap()["customers"].([]any)
	if len(customers) != 0 {
		t.Errorf("expected no customers for second account, got %v", customers)
	}
}
