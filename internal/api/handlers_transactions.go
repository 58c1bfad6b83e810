package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/loyaltypro/loyaltypro/internal/ledger"
	"github.com/loyaltypro/loyaltypro/internal/store"
	"github.com/loyaltypro/loyaltypro/pkg/httpcore"
)

// customerView is the API shape of a customer record. The PIN never
// leaves the store.
type customerView struct {
	Mobile     string                    `json:"mobile"`
	Name       string                    `json:"name"`
	Points     int64                     `json:"points"`
	TotalSpent decimal.Decimal           `json:"totalSpent"`
	History    []store.TransactionRecord `json:"history"`
}

func viewOf(c store.Customer) customerView {
	return customerView{
		Mobile:     c.Mobile,
		Name:       c.Name,
		Points:     c.Points,
		TotalSpent: c.TotalSpent,
		History:    c.History,
	}
}

// PreviewPoints handles GET /v1/transactions/preview?bill=&cash=.
// It mirrors the live preview shown while filling the entry form.
func (h *Handler) PreviewPoints(w http.ResponseWriter, r *http.Request) {
	bill, err := decimal.NewFromString(r.URL.Query().Get("bill"))
	if err != nil {
		httpcore.Error(w, http.StatusUnprocessableEntity, "invalid bill amount")
		return
	}
	cash, err := decimal.NewFromString(r.URL.Query().Get("cash"))
	if err != nil {
		httpcore.Error(w, http.StatusUnprocessableEntity, "invalid cash amount")
		return
	}

	points, err := ledger.ComputePoints(bill, cash)
	if err != nil {
		httpcore.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	httpcore.JSON(w, http.StatusOK, map[string]int64{"points": points})
}

// RecordTransaction handles POST /v1/transactions. Points are computed
// from the bill/cash pair and the transaction is applied to the
// account's customer set; the new customer set is swapped in whole, so
// a failed transaction leaves nothing behind.
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	acct := h.accountFor(r)

	var req struct {
		Mobile    string          `json:"mobile"`
		Name      string          `json:"name"`
		PIN       string          `json:"pin"`
		Bill      decimal.Decimal `json:"bill"`
		CashGiven decimal.Decimal `json:"cash_given"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Mobile == "" {
		httpcore.Error(w, http.StatusUnprocessableEntity, "mobile is required")
		return
	}

	points, err := ledger.ComputePoints(req.Bill, req.CashGiven)
	if err != nil {
		httpcore.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var applied store.Customer
	err = h.store.UpdateCustomers(acct.Username, func(customers []store.Customer) ([]store.Customer, error) {
		updated, c, err := ledger.ApplyTransaction(customers, ledger.Transaction{
			Mobile: req.Mobile,
			Name:   req.Name,
			PIN:    req.PIN,
			Bill:   req.Bill,
			Points: points,
			Now:    h.store.Clock.Now(),
		})
		if err != nil {
			return nil, err
		}
		applied = c
		return updated, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrPINMismatch):
			httpcore.Error(w, http.StatusForbidden, "incorrect pin")
		case errors.Is(err, ledger.ErrInvalidPIN), errors.Is(err, ledger.ErrInvalidBill):
			httpcore.Error(w, http.StatusUnprocessableEntity, err.Error())
		default:
			httpcore.Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	h.persist()

	h.logger.Info("transaction recorded",
		"account", acct.Username,
		"mobile", req.Mobile,
		"points", points,
	)

	httpcore.JSON(w, http.StatusCreated, map[string]any{
		"customer":       viewOf(applied),
		"points_awarded": points,
	})
}
