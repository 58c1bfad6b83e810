package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loyaltypro/loyaltypro/internal/analytics"
	"github.com/loyaltypro/loyaltypro/pkg/httpcore"
)

// ListCustomers handles GET /v1/customers. Records come back in
// store-iteration order (first transaction first).
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	acct := h.accountFor(r)

	views := make([]customerView, 0, len(acct.Customers))
	for _, c := range acct.Customers {
		views = append(views, viewOf(c))
	}
	httpcore.JSON(w, http.StatusOK, map[string]any{"customers": views})
}

// GetCustomer handles GET /v1/customers/{mobile}: an explicit
// found/not-found lookup, never an empty-object fallback.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	acct := h.accountFor(r)
	mobile := chi.URLParam(r, "mobile")

	c, ok := h.store.FindCustomer(acct.Username, mobile)
	if !ok {
		httpcore.Error(w, http.StatusNotFound, "customer not found")
		return
	}
	httpcore.JSON(w, http.StatusOK, map[string]any{"customer": viewOf(c)})
}

// ExportCustomers handles GET /v1/customers/export, serving the CSV as
// a downloadable artifact.
func (h *Handler) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	acct := h.accountFor(r)

	csv := analytics.ExportCSV(acct.Customers)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="loyalty_data.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csv))
}
