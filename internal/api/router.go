// Package api wires the loyaltypro HTTP surface: account auth,
// transaction recording, customer lookup, analytics, CSV export, AI
// insights, and the ops control plane.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/loyaltypro/loyaltypro/internal/insights"
	"github.com/loyaltypro/loyaltypro/internal/store"
	"github.com/loyaltypro/loyaltypro/pkg/httpcore"
)

type contextKey string

const (
	usernameCtxKey  contextKey = "username"
	sessionIDCtxKey contextKey = "session_id"
)

// Options configures the handler.
type Options struct {
	TokenSecret []byte
	TokenTTL    time.Duration
	// DataFile is the snapshot path written after each mutation.
	// Empty disables persistence.
	DataFile string
	// OpsToken gates the /admin control plane. Empty disables it.
	OpsToken string
}

// Handler holds all API handler state.
type Handler struct {
	store    *store.MemoryStore
	logger   *slog.Logger
	insights insights.Generator
	opts     Options
}

// NewHandler creates a new API handler.
func NewHandler(s *store.MemoryStore, logger *slog.Logger, gen insights.Generator, opts Options) *Handler {
	return &Handler{
		store:    s,
		logger:   logger,
		insights: gen,
		opts:     opts,
	}
}

// Routes mounts the API endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware)

			r.Post("/auth/logout", h.Logout)
			r.Get("/me", h.Me)

			r.Get("/transactions/preview", h.PreviewPoints)
			r.Post("/transactions", h.RecordTransaction)

			r.Get("/customers", h.ListCustomers)
			r.Get("/customers/export", h.ExportCustomers)
			r.Get("/customers/{mobile}", h.GetCustomer)

			r.Get("/analytics/overview", h.Overview)
			r.Get("/analytics/timeseries", h.TimeSeries)
			r.Get("/analytics/spending", h.SpendingDistribution)
			r.Get("/analytics/top-spenders", h.TopSpenders)

			r.Post("/insights", h.GenerateInsights)
		})
	})

	h.adminRoutes(r)
}

// issueToken creates a session and returns its signed bearer token.
func (h *Handler) issueToken(username string) (string, error) {
	now := h.store.Clock.Now()
	sess := store.Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now.Format(time.RFC3339),
		ExpiresAt: now.Add(h.opts.TokenTTL).Format(time.RFC3339),
	}
	h.store.Sessions.Set(sess.ID, sess)

	claims := jwt.MapClaims{
		"sub": username,
		"sid": sess.ID,
		"iat": now.Unix(),
		"exp": now.Add(h.opts.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.opts.TokenSecret)
}

// authMiddleware validates the bearer token and its backing session,
// and puts the account username on the request context.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			httpcore.Error(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		raw, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			httpcore.Error(w, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return h.opts.TokenSecret, nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			httpcore.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httpcore.Error(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		sid, _ := claims["sid"].(string)
		username, _ := claims["sub"].(string)

		sess, ok := h.store.Sessions.Get(sid)
		if !ok || sess.Username != username {
			httpcore.Error(w, http.StatusUnauthorized, "session revoked")
			return
		}
		if exp, err := time.Parse(time.RFC3339, sess.ExpiresAt); err != nil || h.store.Clock.Now().After(exp) {
			httpcore.Error(w, http.StatusUnauthorized, "session expired")
			return
		}
		if _, ok := h.store.GetAccount(username); !ok {
			httpcore.Error(w, http.StatusUnauthorized, "account no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), usernameCtxKey, username)
		ctx = context.WithValue(ctx, sessionIDCtxKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accountFor returns the authenticated account for the request.
func (h *Handler) accountFor(r *http.Request) store.Account {
	username := r.Context().Value(usernameCtxKey).(string)
	acct, _ := h.store.GetAccount(username)
	return acct
}

// persist writes the snapshot after a mutation. Memory remains
// authoritative, so a failed write is logged rather than failing the
// request.
func (h *Handler) persist() {
	if h.opts.DataFile == "" {
		return
	}
	if err := h.store.SaveFile(h.opts.DataFile); err != nil {
		h.logger.Warn("snapshot write failed", "file", h.opts.DataFile, "err", err)
	}
}
