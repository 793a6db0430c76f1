package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"storefront-client/internal/gateway"
	"storefront-client/internal/mockapi"
	"storefront-client/internal/models"
	"storefront-client/internal/notify"
	"storefront-client/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	api         *mockapi.Server
	backend     *httptest.Server
	sessions    *session.Manager
	sessionPath string
	notifier    *notify.Notifier
	store       *Store
	requests    *int32
}

// newTestEnv wires a store against the in-memory backend, counting
// every request that reaches it.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	api := mockapi.NewServer()
	router := api.Router()

	var requests int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(backend.Close)

	sessionPath := filepath.Join(t.TempDir(), "user.json")
	sessions, err := session.NewManager(session.NewFileStore(sessionPath))
	require.NoError(t, err)

	gw := gateway.New(backend.URL, 5*time.Second, sessions)
	notifier := notify.NewNotifier()

	return &testEnv{
		api:         api,
		backend:     backend,
		sessions:    sessions,
		sessionPath: sessionPath,
		notifier:    notifier,
		store:       New(gw, sessions, notifier, nil),
		requests:    &requests,
	}
}

func (env *testEnv) requestCount() int32 {
	return atomic.LoadInt32(env.requests)
}

// registerAndLogin creates a customer account and signs it in.
func (env *testEnv) registerAndLogin(t *testing.T, email string) {
	t.Helper()
	err := env.store.Register(context.Background(), models.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "secret1",
	})
	require.NoError(t, err)
}

// loginAdmin seeds an admin account and signs it in.
func (env *testEnv) loginAdmin(t *testing.T) {
	t.Helper()
	admin := env.api.SeedAdmin("Admin", "admin@example.com", "admin123")
	err := env.store.Login(context.Background(), models.LoginRequest{
		Email:    admin.Email,
		Password: "admin123",
	})
	require.NoError(t, err)
}

func (env *testEnv) seedProduct(id string, price float64, stock int) models.Product {
	return env.api.SeedProduct(models.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.NewFromFloat(price),
		Stock:    stock,
		Category: "Electronics",
	})
}
