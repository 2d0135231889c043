package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Manager hands out one Store per user, opened lazily over its own slice
// of the data dir. An empty user id maps to "default" so single-user
// setups work without auth.
type Manager struct {
	mu      sync.Mutex
	dataDir string
	backend string
	logger  zerolog.Logger
	stores  map[string]*Store
}

func NewManager(dataDir, backend string, logger zerolog.Logger) *Manager {
	if backend != BackendSQLite {
		backend = BackendFile
	}
	return &Manager{
		dataDir: dataDir,
		backend: backend,
		logger:  logger,
		stores:  map[string]*Store{},
	}
}

func (m *Manager) ForUser(userID string) (*Store, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "default"
	}
	userID = sanitizeID(userID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[userID]; ok {
		return s, nil
	}

	var (
		blobs BlobStore
		err   error
	)
	switch m.backend {
	case BackendSQLite:
		blobs, err = NewSQLiteBlobStore(filepath.Join(m.dataDir, userID, "taskden.db"))
	default:
		blobs, err = NewFileBlobStore(filepath.Join(m.dataDir, userID))
	}
	if err != nil {
		return nil, fmt.Errorf("open blob store for %s: %w", userID, err)
	}

	s := New(blobs, m.logger.With().Str("user", userID).Logger())
	if err := s.Initialize(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("initialize store for %s: %w", userID, err)
	}
	m.stores[userID] = s
	return s, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var first error
	for _, s := range m.stores {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	m.stores = map[string]*Store{}
	return first
}

func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
