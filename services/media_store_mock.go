package services

import (
	"context"
	"fmt"
	"sync"
)

// MockMediaStore is an in-memory MediaStore for testing
type MockMediaStore struct {
	files   map[string][]byte // map of reference to file content
	mu      sync.RWMutex
	SaveErr error // returned by Save when set
}

// NewMockMediaStore creates an empty mock store
func NewMockMediaStore() *MockMediaStore {
	return &MockMediaStore{
		files: make(map[string][]byte),
	}
}

// Save records data under key
func (m *MockMediaStore) Save(_ context.Context, key, _ string, data []byte) (string, error) {
	if m.SaveErr != nil {
		return "", m.SaveErr
	}

	m.mu.Lock()
	m.files[key] = data
	m.mu.Unlock()

	return key, nil
}

// URL returns a fake presigned URL for a stored reference
func (m *MockMediaStore) URL(_ context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.files[ref]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("file not found in mock storage: %s", ref)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", ref), nil
}

// Delete forgets ref
func (m *MockMediaStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	delete(m.files, ref)
	m.mu.Unlock()
	return nil
}

// Files returns a copy of every stored file (for testing assertions)
func (m *MockMediaStore) Files() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make(map[string][]byte, len(m.files))
	for k, v := range m.files {
		files[k] = v
	}
	return files
}

// Exists checks if ref is stored
func (m *MockMediaStore) Exists(ref string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[ref]
	return exists
}
