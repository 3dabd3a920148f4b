package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"codeberg.org/snonux/gemtrans/internal/credentials"
	"codeberg.org/snonux/gemtrans/internal/translation"
)

// MockTranslator records requests and returns canned results
type MockTranslator struct {
	// Response is returned when Translations has no entry for the text
	Response     string
	Translations map[string]string
	Errors       map[string]error
	// Err, when set, is returned for every request
	Err error
	// PanicWith makes Translate panic with the given value
	PanicWith interface{}

	// Block, when non-nil, holds every call until it is closed or the
	// context is done
	Block chan struct{}
	// Started receives one value per call, if non-nil
	Started chan translation.Request

	mu       sync.Mutex
	requests []translation.Request
}

// Translate implements translation.Translator
func (m *MockTranslator) Translate(ctx context.Context, req translation.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Started != nil {
		m.Started <- req
	}

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.PanicWith != nil {
		panic(m.PanicWith)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if err, ok := m.Errors[req.Text]; ok {
		return "", err
	}
	if t, ok := m.Translations[req.Text]; ok {
		return t, nil
	}
	if m.Response != "" {
		return m.Response, nil
	}

	// Default mock translation
	return fmt.Sprintf("mock translation of %s", req.Text), nil
}

// Requests returns a copy of every request received so far
func (m *MockTranslator) Requests() []translation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]translation.Request(nil), m.requests...)
}

// CallCount returns the number of Translate calls
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// ErrMockStore is returned by MockStore when configured to fail
var ErrMockStore = errors.New("mock store failure")

// MockStore is an in-memory credentials.Store that can fail on demand and
// counts writes
type MockStore struct {
	*credentials.MemoryStore

	FailGet bool
	FailSet bool

	mu     sync.Mutex
	writes int
}

// NewMockStore creates a MockStore pre-populated with values
func NewMockStore(values map[string]string) *MockStore {
	s := &MockStore{MemoryStore: credentials.NewMemoryStore()}
	for k, v := range values {
		s.MemoryStore.Set(context.Background(), k, v)
	}
	return s
}

// Get implements credentials.Store
func (s *MockStore) Get(ctx context.Context, key string) (string, error) {
	if s.FailGet {
		return "", ErrMockStore
	}
	return s.MemoryStore.Get(ctx, key)
}

// Set implements credentials.Store
func (s *MockStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()

	if s.FailSet {
		return ErrMockStore
	}
	return s.MemoryStore.Set(ctx, key, value)
}

// Writes returns the number of Set calls, failed ones included
func (s *MockStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
