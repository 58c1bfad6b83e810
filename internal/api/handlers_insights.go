package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/loyaltypro/loyaltypro/pkg/httpcore"
)

// GenerateInsights handles POST /v1/insights. The account's customer
// data is sanitized and forwarded with the prompt to the external
// text-generation service. A service fault degrades to a message; it
// never touches store state.
func (h *Handler) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	acct := h.accountFor(r)

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		httpcore.Error(w, http.StatusUnprocessableEntity, "prompt cannot be empty")
		return
	}

	text, err := h.insights.Generate(r.Context(), acct.Customers, req.Prompt)
	if err != nil {
		h.logger.Warn("insight generation failed", "account", acct.Username, "err", err)
		httpcore.Error(w, http.StatusBadGateway, "an error occurred while fetching insights: "+err.Error())
		return
	}

	httpcore.JSON(w, http.StatusOK, map[string]string{"insight": text})
}
