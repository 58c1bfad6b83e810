package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/loyaltypro/loyaltypro/internal/store"
	"github.com/loyaltypro/loyaltypro/pkg/httpcore"
)

type accountView struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Register handles POST /v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Username == "" || req.Password == "" {
		httpcore.Error(w, http.StatusUnprocessableEntity, "name, username and password are required")
		return
	}

	acct, err := h.store.RegisterAccount(req.Name, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			httpcore.Error(w, http.StatusConflict, "username already exists")
			return
		}
		httpcore.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.issueToken(acct.Username)
	if err != nil {
		httpcore.Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	h.persist()

	httpcore.JSON(w, http.StatusCreated, map[string]any{
		"token":   token,
		"account": accountView{Username: acct.Username, Name: acct.Name},
	})
}

// Login handles POST /v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpcore.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	acct, err := h.store.Authenticate(req.Username, req.Password)
	if err != nil {
		httpcore.Error(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := h.issueToken(acct.Username)
	if err != nil {
		httpcore.Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	h.persist()

	httpcore.JSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"account": accountView{Username: acct.Username, Name: acct.Name},
	})
}

// Logout handles POST /v1/auth/logout. The backing session is revoked;
// the token stops working immediately.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sid := r.Context().Value(sessionIDCtxKey).(string)
	h.store.Sessions.Delete(sid)
	h.persist()
	httpcore.JSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me handles GET /v1/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	acct := h.accountFor(r)
	httpcore.JSON(w, http.StatusOK, map[string]any{
		"username":       acct.Username,
		"name":           acct.Name,
		"customer_count": len(acct.Customers),
	})
}
