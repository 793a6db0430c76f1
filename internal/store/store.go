// Package store composes the auth, cart, catalog, order and admin state
// slices into one queryable tree. The Store is the only place state is
// mutated and the only place cross-slice consistency is enforced.
package store

import (
	"context"
	"errors"
	"sync"

	"storefront-client/internal/broker"
	"storefront-client/internal/gateway"
	"storefront-client/internal/notify"
	"storefront-client/internal/session"
	"storefront-client/internal/state"
	"storefront-client/internal/util"

	"go.uber.org/zap"
)

// Operation keys for generation tracking. Each key covers one logical
// concern; a resolving response is applied only when its generation is
// still the latest issued for its key.
const (
	opAuth           = "auth"
	opCart           = "cart"
	opCatalogListing = "catalog.listing"
	opCatalogDetail  = "catalog.detail"
	opOrdersHistory  = "orders.history"
	opOrdersCurrent  = "orders.current"
	opAdminStats     = "admin.stats"
	opAdminUsers     = "admin.users"
	opAdminProducts  = "admin.products"
	opAdminOrders    = "admin.orders"
)

// Snapshot is an immutable view of the whole state tree. Slices inside
// a snapshot share backing arrays with the store; this is safe because
// state is only ever replaced wholesale, never mutated in place.
type Snapshot struct {
	Auth    AuthState
	Cart    CartState
	Catalog CatalogState
	Orders  OrderState
	Admin   AdminState
}

// Subscriber receives a snapshot after every state transition.
type Subscriber func(Snapshot)

// Store is the coordinator: it dispatches slice operations through the
// gateway and applies their results to the state tree.
type Store struct {
	mu       sync.Mutex
	gw       *gateway.Gateway
	sessions *session.Manager
	notifier *notify.Notifier
	activity *broker.ActivityPublisher
	logger   *zap.Logger

	auth    AuthState
	cart    CartState
	catalog CatalogState
	orders  OrderState
	admin   AdminState

	gens    map[string]uint64
	subs    map[int]Subscriber
	nextSub int
}

// New creates a store. activity may be nil when no event stream is
// configured. The store restores the auth slice from the persisted
// session and registers itself as the gateway's auth-reject hook.
func New(gw *gateway.Gateway, sessions *session.Manager, notifier *notify.Notifier, activity *broker.ActivityPublisher) *Store {
	s := &Store{
		gw:       gw,
		sessions: sessions,
		notifier: notifier,
		activity: activity,
		logger:   util.GetLogger(),
		gens:     make(map[string]uint64),
		subs:     make(map[int]Subscriber),
	}

	if sess := sessions.Current(); sess != nil {
		s.auth.Session = sess
	}

	gw.OnAuthReject(s.handleAuthReject)
	return s
}

// Snapshot returns the current state tree.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Auth:    s.auth,
		Cart:    s.cart,
		Catalog: s.catalog,
		Orders:  s.orders,
		Admin:   s.admin,
	}
}

// Subscribe registers fn to run after every state transition. The
// returned function unsubscribes.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// begin issues a new generation for key, transitions the lifecycle to
// Pending and notifies subscribers.
func (s *Store) begin(key string, lc *state.Lifecycle) uint64 {
	s.mu.Lock()
	s.gens[key]++
	gen := s.gens[key]
	lc.Begin()
	snap, subs := s.fanoutLocked()
	s.mu.Unlock()

	dispatch(snap, subs)
	return gen
}

// apply runs fn under the store lock if gen is still the latest for
// key. Stale resolutions are discarded and counted; the state reflects
// only the newest issued request per key.
func (s *Store) apply(key string, gen uint64, fn func()) bool {
	s.mu.Lock()
	if s.gens[key] != gen {
		s.mu.Unlock()
		util.StaleResponsesDiscarded.WithLabelValues(key).Inc()
		s.logger.Debug("Discarded stale response",
			zap.String("operation", key),
			zap.Uint64("generation", gen))
		return false
	}
	fn()
	snap, subs := s.fanoutLocked()
	s.mu.Unlock()

	dispatch(snap, subs)
	return true
}

// fanoutLocked captures the snapshot and subscriber list while the lock
// is held; callbacks run after release so subscribers may call back into
// the store.
func (s *Store) fanoutLocked() (Snapshot, []Subscriber) {
	snap := s.snapshotLocked()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return snap, subs
}

func dispatch(snap Snapshot, subs []Subscriber) {
	for _, fn := range subs {
		fn(snap)
	}
}

// fail records a failure for one lifecycle and publishes an error
// notice.
func (s *Store) fail(key string, gen uint64, lc *state.Lifecycle, err error) {
	reason := reasonOf(err)
	s.apply(key, gen, func() {
		lc.Fail(reason)
	})
	s.notifier.Publish(notify.LevelError, reason)
}

// requireSession pre-empts authenticated calls when no session exists,
// per the gateway contract that callers enforce session presence.
func (s *Store) requireSession() error {
	if s.sessions.Current() == nil {
		return session.ErrNoSession
	}
	return nil
}

// handleAuthReject is the cross-slice consequence of a credential
// rejection: the gateway has already cleared the persisted session, so
// every slice holding authenticated-epoch state is cleared with it and
// any in-flight operation is invalidated.
func (s *Store) handleAuthReject() {
	s.mu.Lock()

	var userID string
	if s.auth.Session != nil {
		userID = s.auth.Session.ID
	}

	// Invalidate all in-flight generations so late resolutions from the
	// rejected epoch cannot resurrect its state.
	for key := range s.gens {
		s.gens[key]++
	}

	s.clearAuthenticatedStateLocked()
	snap, subs := s.fanoutLocked()
	s.mu.Unlock()

	dispatch(snap, subs)

	if userID != "" {
		s.activity.SessionEnded(context.Background(), userID, "credential_rejected")
	}
	s.notifier.Publish(notify.LevelError, "Please login to continue.")
	s.logger.Info("Session rejected by backend, cleared client state")
}

// clearAuthenticatedStateLocked blanks every slice that is meaningless
// without a session. Catalog listing and detail are public and survive.
func (s *Store) clearAuthenticatedStateLocked() {
	s.auth = AuthState{}
	s.cart = CartState{}
	s.orders = OrderState{}
	s.admin = AdminState{}
}

// reasonOf extracts the human-readable failure reason recorded in slice
// state.
func reasonOf(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Reason()
	}
	return err.Error()
}
