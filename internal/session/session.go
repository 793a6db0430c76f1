// Package session owns the persisted Session record. All reads and
// writes of the durable record go through a single Manager; no other
// component touches storage.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"storefront-client/internal/models"
	"storefront-client/internal/util"

	"go.uber.org/zap"
)

// ErrNoSession is returned when an operation requires an active session
// and none exists.
var ErrNoSession = errors.New("no active session")

// Store persists a single session record under a fixed name.
type Store interface {
	Load() (*models.Session, error)
	Save(s *models.Session) error
	Clear() error
}

// FileStore keeps the session as one JSON file on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed session store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted session. A missing file means no session.
func (fs *FileStore) Load() (*models.Session, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	return &s, nil
}

// Save writes the session record, creating parent directories as needed.
func (fs *FileStore) Save(s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session dir: %w", err)
		}
	}

	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the persisted record. Clearing an absent record is not
// an error.
func (fs *FileStore) Clear() error {
	err := os.Remove(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Manager is the single ownership point for the active session. It
// caches the record in memory and serializes all storage access.
type Manager struct {
	mu      sync.RWMutex
	store   Store
	current *models.Session
	logger  *zap.Logger
}

// NewManager creates a manager and loads any persisted session.
func NewManager(store Store) (*Manager, error) {
	m := &Manager{
		store:  store,
		logger: util.GetLogger(),
	}

	s, err := store.Load()
	if err != nil {
		// A corrupt record must not wedge startup; discard it.
		m.logger.Warn("Discarding unreadable session record", zap.Error(err))
		_ = store.Clear()
		return m, nil
	}
	m.current = s
	return m, nil
}

// Current returns the active session, or nil when logged out.
func (m *Manager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Token returns the active credential token, if any.
func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.Token == "" {
		return "", false
	}
	return m.current.Token, true
}

// Set replaces the active session in memory and in durable storage.
func (m *Manager) Set(s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(s); err != nil {
		return err
	}
	m.current = s
	return nil
}

// Clear discards the active session from memory and storage. It is
// synchronous: after Clear returns, Current observes absence.
func (m *Manager) Clear(reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}

	util.SessionClearsTotal.WithLabelValues(reason).Inc()
	m.current = nil
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session storage: %w", err)
	}
	return nil
}
