package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/loyaltypro/loyaltypro/pkg/httpcore"
)

// adminRoutes mounts the ops control plane: health, full-state
// export/import (the load-all/save-all persistence boundary), reset,
// and the simulated clock. Everything except health requires the
// configured ops token.
func (h *Handler) adminRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/health", h.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(h.opsAuth)
			r.Get("/state", h.handleGetState)
			r.Post("/state", h.handleLoadState)
			r.Post("/reset", h.handleReset)
			r.Post("/time/advance", h.handleTimeAdvance)
			r.Get("/time", h.handleGetTime)
		})
	})
}

func (h *Handler) opsAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.opts.OpsToken == "" {
			httpcore.Error(w, http.StatusNotFound, "ops endpoints disabled")
			return
		}
		if r.Header.Get("X-Ops-Token") != h.opts.OpsToken {
			httpcore.Error(w, http.StatusUnauthorized, "invalid ops token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpcore.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	httpcore.JSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) handleLoadState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httpcore.Error(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}
	if err := h.store.LoadState(body); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "failed to load state: "+err.Error())
		return
	}
	h.persist()
	httpcore.JSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.store.Reset()
	h.persist()
	httpcore.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) handleTimeAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Duration string `json:"duration"` // Go duration string, e.g. "24h"
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid duration: "+err.Error())
		return
	}

	h.store.Clock.Advance(d)
	httpcore.JSON(w, http.StatusOK, map[string]any{
		"status":    "advanced",
		"duration":  d.String(),
		"offset":    h.store.Clock.Offset().String(),
		"simulated": h.store.Clock.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleGetTime(w http.ResponseWriter, r *http.Request) {
	httpcore.JSON(w, http.StatusOK, map[string]any{
		"real":      time.Now().Format(time.RFC3339),
		"simulated": h.store.Clock.Now().Format(time.RFC3339),
		"offset":    h.store.Clock.Offset().String(),
	})
}
