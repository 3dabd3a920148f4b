package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	dataDirName = "gemtrans"
	fileName    = "credentials.json"
)

// DataDir returns the XDG data directory for gemtrans.
// Respects $XDG_DATA_HOME and falls back to ~/.local/share.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// DefaultFilePath returns the path of the JSON credential file
func DefaultFilePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FileStore persists slots as a JSON object in a single file
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the file at path. The file and its
// directory are created on the first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// ErrCorruptFile is returned when the credentials file is not a JSON object
var ErrCorruptFile = errors.New("credentials file is corrupt")

// load reads the slot map. A missing file reads as empty.
func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

// Get implements Store
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set implements Store. The file is written with 0600 permissions.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if errors.Is(err, ErrCorruptFile) {
		// Keep the unreadable file for inspection and start over
		if err := os.Rename(s.path, s.path+".corrupt"); err != nil {
			return fmt.Errorf("moving corrupt credentials file aside: %w", err)
		}
		values = make(map[string]string)
	} else if err != nil {
		return err
	}
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing credentials file: %w", err)
	}

	return nil
}
