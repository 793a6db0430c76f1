package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront-client/internal/models"
	"storefront-client/internal/notify"
	"storefront-client/internal/session"
	"storefront-client/internal/state"
	"storefront-client/internal/util"

	"go.uber.org/zap"
)

// AuthState owns the current session. The session itself is persisted
// by the session manager; this slice mirrors it for snapshot reads.
type AuthState struct {
	Session   *models.Session
	Lifecycle state.Lifecycle
}

// LoggedIn reports whether a session is active.
func (a AuthState) LoggedIn() bool {
	return a.Session != nil
}

// Register creates an account and starts a session. On success the
// returned session is stored verbatim, credential included, in memory
// and in durable storage. On failure any prior session is untouched.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) error {
	ctx, span := util.StartSpan(ctx, "Store.Register")
	defer span.End()

	gen := s.begin(opAuth, &s.auth.Lifecycle)

	var sess models.Session
	if err := s.gw.Send(ctx, http.MethodPost, "/auth/register", req, &sess, false); err != nil {
		s.fail(opAuth, gen, &s.auth.Lifecycle, err)
		return err
	}

	return s.startSession(ctx, gen, &sess, "Registration successful!")
}

// Login authenticates and starts a session with the same contract as
// Register.
func (s *Store) Login(ctx context.Context, req models.LoginRequest) error {
	ctx, span := util.StartSpan(ctx, "Store.Login")
	defer span.End()

	gen := s.begin(opAuth, &s.auth.Lifecycle)

	var sess models.Session
	if err := s.gw.Send(ctx, http.MethodPost, "/auth/login", req, &sess, false); err != nil {
		s.fail(opAuth, gen, &s.auth.Lifecycle, err)
		return err
	}

	return s.startSession(ctx, gen, &sess, "Login successful!")
}

// startSession persists and announces a new session. Both happen inside
// the generation check: a resolution superseded by a logout or a newer
// auth request must not re-persist its credential or fire any of the
// success side effects.
func (s *Store) startSession(ctx context.Context, gen uint64, sess *models.Session, notice string) error {
	var persistErr error
	applied := s.apply(opAuth, gen, func() {
		if err := s.sessions.Set(sess); err != nil {
			persistErr = fmt.Errorf("failed to persist session: %w", err)
			s.auth.Lifecycle.Fail(persistErr.Error())
			return
		}
		s.auth.Session = sess
		s.auth.Lifecycle.Succeed()
	})
	if !applied {
		return nil
	}
	if persistErr != nil {
		s.notifier.Publish(notify.LevelError, persistErr.Error())
		return persistErr
	}

	s.activity.SessionStarted(ctx, sess.ID, sess.Role)
	s.notifier.Publish(notify.LevelSuccess, notice)
	s.logger.Info("Session started",
		zap.String("user_id", sess.ID),
		zap.String("role", sess.Role))
	return nil
}

// UpdateProfile sends the changed fields and shallow-merges the backend
// response into the existing session: returned fields override, absent
// fields are retained. The merged result is persisted.
func (s *Store) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	ctx, span := util.StartSpan(ctx, "Store.UpdateProfile")
	defer span.End()

	if err := s.requireSession(); err != nil {
		return err
	}

	gen := s.begin(opAuth, &s.auth.Lifecycle)

	var patch json.RawMessage
	if err := s.gw.Send(ctx, http.MethodPut, "/auth/profile", update, &patch, true); err != nil {
		s.fail(opAuth, gen, &s.auth.Lifecycle, err)
		return err
	}

	// Merge and persist inside the generation check: if the session
	// changed epochs while the request was in flight (logout, credential
	// rejection, another login), the patch belongs to the old epoch and
	// must not touch the new record.
	var applyErr error
	applied := s.apply(opAuth, gen, func() {
		current := s.auth.Session
		if current == nil {
			applyErr = session.ErrNoSession
			return
		}
		merged, err := mergeSession(current, patch)
		if err != nil {
			applyErr = err
			s.auth.Lifecycle.Fail(err.Error())
			return
		}
		if err := s.sessions.Set(merged); err != nil {
			applyErr = fmt.Errorf("failed to persist session: %w", err)
			s.auth.Lifecycle.Fail(applyErr.Error())
			return
		}
		s.auth.Session = merged
		s.auth.Lifecycle.Succeed()
	})
	if !applied {
		return nil
	}
	if applyErr != nil {
		s.notifier.Publish(notify.LevelError, applyErr.Error())
		return applyErr
	}

	s.notifier.Publish(notify.LevelSuccess, "Profile updated successfully!")
	return nil
}

// Logout discards the session locally and synchronously: no backend
// call, and after it returns any read observes the session as absent.
// Session loss cascades to every authenticated-epoch slice.
func (s *Store) Logout() error {
	var userID string
	if sess := s.sessions.Current(); sess != nil {
		userID = sess.ID
	}

	if err := s.sessions.Clear("logout"); err != nil {
		return err
	}

	s.mu.Lock()
	for key := range s.gens {
		s.gens[key]++
	}
	s.clearAuthenticatedStateLocked()
	snap, subs := s.fanoutLocked()
	s.mu.Unlock()

	dispatch(snap, subs)

	if userID != "" {
		s.activity.SessionEnded(context.Background(), userID, "logout")
		s.logger.Info("Session ended", zap.String("user_id", userID))
	}
	return nil
}

// mergeSession overlays the backend's returned fields onto the current
// session record, key by key.
func mergeSession(current *models.Session, patch json.RawMessage) (*models.Session, error) {
	base, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("failed to encode current session: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode current session: %w", err)
	}

	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(patch, &overlay); err != nil {
		return nil, fmt.Errorf("unexpected profile response shape: %w", err)
	}
	for k, v := range overlay {
		fields[k] = v
	}

	combined, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged session: %w", err)
	}

	var merged models.Session
	if err := json.Unmarshal(combined, &merged); err != nil {
		return nil, fmt.Errorf("failed to decode merged session: %w", err)
	}
	return &merged, nil
}
