package api

import (
	"net/http"
	"strconv"

	"github.com/loyaltypro/loyaltypro/internal/analytics"
	"github.com/loyaltypro/loyaltypro/pkg/httpcore"
)

// Overview handles GET /v1/analytics/overview.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	acct := h.accountFor(r)
	httpcore.JSON(w, http.StatusOK, analytics.Overview(acct.Customers))
}

// TimeSeries handles GET /v1/analytics/timeseries?timeframe=7d|30d|all.
func (h *Handler) TimeSeries(w http.ResponseWriter, r *http.Request) {
	acct := h.accountFor(r)

	tf, err := analytics.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		httpcore.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	series := analytics.TimeSeries(acct.Customers, tf, h.store.Clock.Now())
	httpcore.JSON(w, http.StatusOK, series)
}

// SpendingDistribution handles GET /v1/analytics/spending.
func (h *Handler) SpendingDistribution(w http.ResponseWriter, r *http.Request) {
	acct := h.accountFor(r)
	httpcore.JSON(w, http.StatusOK, map[string]any{
		"brackets": analytics.SpendingDistribution(acct.Customers),
	})
}

// TopSpenders handles GET /v1/analytics/top-spenders?limit=n (default 5).
func (h *Handler) TopSpenders(w http.ResponseWriter, r *http.Request) {
	acct := h.accountFor(r)

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpcore.Error(w, http.StatusUnprocessableEntity, "limit must be a positive integer")
			return
		}
		limit = n
	}

	top := analytics.TopSpenders(acct.Customers, limit)
	views := make([]customerView, 0, len(top))
	for _, c := range top {
		views = append(views, viewOf(c))
	}
	httpcore.JSON(w, http.StatusOK, map[string]any{"customers": views})
}
