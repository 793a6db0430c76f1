package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"storefront-client/internal/gateway"
	"storefront-client/internal/models"
	"storefront-client/internal/notify"
	"storefront-client/internal/session"
	"storefront-client/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresAndPersistsSession(t *testing.T) {
	env := newTestEnv(t)
	env.api.SeedAdmin("Ann", "a@b.com", "secret1")

	err := env.store.Login(context.Background(), models.LoginRequest{
		Email:    "a@b.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	snap := env.store.Snapshot()
	require.NotNil(t, snap.Auth.Session)
	assert.Equal(t, "a@b.com", snap.Auth.Session.Email)
	assert.Equal(t, models.RoleAdmin, snap.Auth.Session.Role)
	assert.NotEmpty(t, snap.Auth.Session.Token)
	assert.Equal(t, state.StatusSucceeded, snap.Auth.Lifecycle.Status)

	// Reload simulation: a fresh manager reading the same storage sees
	// the persisted record.
	reloaded, err := session.NewManager(session.NewFileStore(env.sessionPath))
	require.NoError(t, err)
	require.NotNil(t, reloaded.Current())
	assert.Equal(t, snap.Auth.Session.Token, reloaded.Current().Token)
}

func TestLoginFailureLeavesPriorSessionUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "keep@example.com")
	before := env.store.Snapshot().Auth.Session
	require.NotNil(t, before)

	err := env.store.Login(context.Background(), models.LoginRequest{
		Email:    "keep@example.com",
		Password: "wrong",
	})
	require.Error(t, err)

	snap := env.store.Snapshot()
	assert.Equal(t, state.StatusFailed, snap.Auth.Lifecycle.Status)
	assert.Equal(t, "Invalid email or password.", snap.Auth.Lifecycle.Err)
	require.NotNil(t, snap.Auth.Session)
	assert.Equal(t, before.Token, snap.Auth.Session.Token)
}

func TestRegisterCreatesCustomerSession(t *testing.T) {
	env := newTestEnv(t)

	err := env.store.Register(context.Background(), models.RegisterRequest{
		Name:     "New User",
		Email:    "new@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	snap := env.store.Snapshot()
	require.NotNil(t, snap.Auth.Session)
	assert.Equal(t, models.RoleCustomer, snap.Auth.Session.Role)
	assert.NotEmpty(t, snap.Auth.Session.Token)
}

func TestUpdateProfileMergesResponseIntoSession(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "merge@example.com")
	before := env.store.Snapshot().Auth.Session

	name := "Renamed User"
	addr := models.Address{Street: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
	err := env.store.UpdateProfile(context.Background(), models.ProfileUpdate{
		Name:    &name,
		Address: &addr,
	})
	require.NoError(t, err)

	snap := env.store.Snapshot()
	require.NotNil(t, snap.Auth.Session)
	// Returned fields override.
	assert.Equal(t, name, snap.Auth.Session.Name)
	require.NotNil(t, snap.Auth.Session.Address)
	assert.Equal(t, "Springfield", snap.Auth.Session.Address.City)
	// Absent fields are retained, credential included.
	assert.Equal(t, before.Email, snap.Auth.Session.Email)
	assert.Equal(t, before.Token, snap.Auth.Session.Token)

	// Merged result is persisted.
	reloaded, err := session.NewManager(session.NewFileStore(env.sessionPath))
	require.NoError(t, err)
	require.NotNil(t, reloaded.Current())
	assert.Equal(t, name, reloaded.Current().Name)
}

func TestUpdateProfileWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	name := "Nobody"
	err := env.store.UpdateProfile(context.Background(), models.ProfileUpdate{Name: &name})
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Zero(t, env.requestCount())
}

func TestLogoutIsSynchronousAndLocal(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "bye@example.com")
	env.seedProduct("p1", 9.99, 5)
	require.NoError(t, env.store.AddToCart(context.Background(), "p1", 1))

	sent := env.requestCount()
	require.NoError(t, env.store.Logout())

	// No backend call: logout is a local credential discard.
	assert.Equal(t, sent, env.requestCount())

	// Any read observes absence immediately.
	assert.Nil(t, env.sessions.Current())
	snap := env.store.Snapshot()
	assert.Nil(t, snap.Auth.Session)
	assert.Equal(t, state.StatusIdle, snap.Auth.Lifecycle.Status)

	// Session loss cascades: cart and order views are cleared, not left
	// showing the previous epoch's data.
	assert.Empty(t, snap.Cart.Items)
	assert.Empty(t, snap.Orders.Orders)
	assert.Nil(t, snap.Orders.Current)

	// The persisted record is gone as well.
	reloaded, err := session.NewManager(session.NewFileStore(env.sessionPath))
	require.NoError(t, err)
	assert.Nil(t, reloaded.Current())
}

// TestLateLoginResponseCannotResurrectSession delays a login response
// until after a logout. The late credential belongs to a superseded
// epoch: it must not be stored in memory, persisted to disk, or
// announced.
func TestLateLoginResponseCannotResurrectSession(t *testing.T) {
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_ = json.NewEncoder(w).Encode(models.Session{
			ID:    "u1",
			Name:  "Ann",
			Email: "ann@example.com",
			Role:  models.RoleCustomer,
			Token: "tok-late",
		})
	}))
	defer backend.Close()

	sessionPath := filepath.Join(t.TempDir(), "user.json")
	sessions, err := session.NewManager(session.NewFileStore(sessionPath))
	require.NoError(t, err)
	gw := gateway.New(backend.URL, 5*time.Second, sessions)
	notifier := notify.NewNotifier()
	notices, stopNotices := notifier.Subscribe()
	defer stopNotices()
	st := New(gw, sessions, notifier, nil)

	done := make(chan error, 1)
	go func() {
		done <- st.Login(context.Background(), models.LoginRequest{Email: "ann@example.com", Password: "secret1"})
	}()
	require.Eventually(t, func() bool {
		return st.Snapshot().Auth.Lifecycle.Pending()
	}, time.Second, time.Millisecond)

	require.NoError(t, st.Logout())
	close(release)
	require.NoError(t, <-done)

	assert.Nil(t, sessions.Current())
	assert.Nil(t, st.Snapshot().Auth.Session)

	// Nothing was re-persisted.
	reloaded, err := session.NewManager(session.NewFileStore(sessionPath))
	require.NoError(t, err)
	assert.Nil(t, reloaded.Current())

	// No success notice fired for the discarded resolution.
	for {
		select {
		case notice := <-notices:
			assert.NotEqual(t, "Login successful!", notice.Message)
		default:
			return
		}
	}
}

// TestStaleProfilePatchCannotTouchNewSession overlaps a profile update
// with a logout plus a different user's login. The old epoch's patch
// resolves last and must not be merged into the new identity's record.
func TestStaleProfilePatchCannotTouchNewSession(t *testing.T) {
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/profile":
			<-release
			_ = json.NewEncoder(w).Encode(map[string]string{"name": "Old Epoch"})
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(models.Session{
				ID:    "u2",
				Name:  "Beth",
				Email: "beth@example.com",
				Role:  models.RoleCustomer,
				Token: "tok-b",
			})
		}
	}))
	defer backend.Close()

	sessionPath := filepath.Join(t.TempDir(), "user.json")
	sessions, err := session.NewManager(session.NewFileStore(sessionPath))
	require.NoError(t, err)
	require.NoError(t, sessions.Set(&models.Session{
		ID:    "u1",
		Name:  "Ann",
		Email: "ann@example.com",
		Role:  models.RoleCustomer,
		Token: "tok-a",
	}))

	gw := gateway.New(backend.URL, 5*time.Second, sessions)
	st := New(gw, sessions, notify.NewNotifier(), nil)

	name := "Old Epoch"
	done := make(chan error, 1)
	go func() {
		done <- st.UpdateProfile(context.Background(), models.ProfileUpdate{Name: &name})
	}()
	require.Eventually(t, func() bool {
		return st.Snapshot().Auth.Lifecycle.Pending()
	}, time.Second, time.Millisecond)

	require.NoError(t, st.Logout())
	require.NoError(t, st.Login(context.Background(), models.LoginRequest{Email: "beth@example.com", Password: "secret1"}))

	close(release)
	require.NoError(t, <-done)

	current := sessions.Current()
	require.NotNil(t, current)
	assert.Equal(t, "u2", current.ID)
	assert.Equal(t, "Beth", current.Name)

	snap := st.Snapshot()
	require.NotNil(t, snap.Auth.Session)
	assert.Equal(t, "Beth", snap.Auth.Session.Name)

	// The persisted record is the new epoch's, untouched by the patch.
	reloaded, err := session.NewManager(session.NewFileStore(sessionPath))
	require.NoError(t, err)
	require.NotNil(t, reloaded.Current())
	assert.Equal(t, "Beth", reloaded.Current().Name)
}
