package credentials

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultSlot is the key under which the Gemini API key is stored
const DefaultSlot = "geminiApiKey"

// Store is a durable key-value slot store. Get returns "" and a nil error
// when the key has never been written.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Backend names accepted by Open
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	// BackendPreferences keeps the key in the GUI's fyne preferences and
	// is only available while the GUI runs
	BackendPreferences = "preferences"
)

// Config selects and parameterises a store backend
type Config struct {
	Backend string
	// Path is the file or database path for file and sqlite backends.
	// Empty means the default location in the data directory.
	Path string
	// DSN is the PostgreSQL connection string
	DSN string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the store described by cfg. The returned Closer releases any
// database handle and must be closed by the caller.
func Open(ctx context.Context, cfg Config) (Store, io.Closer, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		path := cfg.Path
		if path == "" {
			p, err := DefaultFilePath()
			if err != nil {
				return nil, nil, err
			}
			path = p
		}
		return NewFileStore(path), nopCloser{}, nil

	case BackendSQLite:
		path := cfg.Path
		if path == "" {
			dir, err := DataDir()
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(dir, "credentials.db")
		}
		s, err := NewSQLiteStore(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case BackendPostgres:
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("postgres credential store requires a DSN")
		}
		s, err := NewPostgresStore(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case BackendMemory:
		return NewMemoryStore(), nopCloser{}, nil

	case BackendPreferences:
		return nil, nil, fmt.Errorf("credential store %q is only available in the GUI", cfg.Backend)

	default:
		return nil, nil, fmt.Errorf("unknown credential store backend: %s", cfg.Backend)
	}
}

// MemoryStore keeps slots in memory only
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store
func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

// Set implements Store
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// MaskKey returns a masked version of a key for display
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
