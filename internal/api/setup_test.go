package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/loyaltypro/loyaltypro/internal/api"
	"github.com/loyaltypro/loyaltypro/internal/store"
	"github.com/loyaltypro/loyaltypro/pkg/httpcore"
	"github.com/loyaltypro/loyaltypro/pkg/testutil"
)

const opsToken = "test-ops-token"

// stubGenerator stands in for the external text-generation service.
type stubGenerator struct {
	mu            sync.Mutex
	reply         string
	err           error
	lastPrompt    string
	lastCustomers []store.Customer
}

func (g *stubGenerator) Generate(ctx context.Context, customers []store.Customer, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastPrompt = prompt
	g.lastCustomers = customers
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type env struct {
	t        *testing.T
	client   *testutil.Client
	store    *store.MemoryStore
	gen      *stubGenerator
	dataFile string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithOptions(t, api.Options{
		TokenSecret: []byte("test-secret"),
		TokenTTL:    24 * time.Hour,
		OpsToken:    opsToken,
	}, true)
}

func newEnvWithOptions(t *testing.T, opts api.Options, persist bool) *env {
	t.Helper()

	memStore := store.New()
	gen := &stubGenerator{reply: "insight text"}

	dataFile := ""
	if persist {
		dataFile = filepath.Join(t.TempDir(), "state.json")
	}
	opts.DataFile = dataFile

	srv := httpcore.New(&httpcore.Config{
		LogLevel:  "error",
		LogFormat: "text",
		Name:      "loyaltypro-test",
	})
	handler := api.NewHandler(memStore, srv.Logger, gen, opts)
	handler.Routes(srv.Router)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &env{
		t:        t,
		client:   testutil.NewClient(t, ts),
		store:    memStore,
		gen:      gen,
		dataFile: dataFile,
	}
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// register creates an account and returns its bearer token.
func (e *env) register(name, username, password string) string {
	e.t.Helper()
	resp := e.client.Post("/v1/auth/register", map[string]string{
		"name":     name,
		"username": username,
		"password": password,
	})
	resp.AssertStatus(http.StatusCreated)
	token, _ := resp.JSONMap()["token"].(string)
	if token == "" {
		e.t.Fatal("register response missing token")
	}
	return token
}

func (e *env) get(token, path string) *testutil.Response {
	e.t.Helper()
	return e.client.DoWithHeaders("GET", path, nil, bearer(token))
}

func (e *env) post(token, path string, body any) *testutil.Response {
	e.t.Helper()
	return e.client.DoWithHeaders("POST", path, body, bearer(token))
}

// recordTxn records a transaction for the account behind token.
func (e *env) recordTxn(token, mobile, name, pin string, bill, cash string) *testutil.Response {
	e.t.Helper()
	return e.post(token, "/v1/transactions", map[string]any{
		"mobile":     mobile,
		"name":       name,
		"pin":        pin,
		"bill":       bill,
		"cash_given": cash,
	})
}
