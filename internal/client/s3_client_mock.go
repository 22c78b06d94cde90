package client

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MockArchiver implements Archiver for testing without AWS credentials
type MockArchiver struct {
	mu      sync.Mutex
	Objects map[string][]byte

	// Optional override for custom test behavior
	ArchiveFunc func(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// NewMockArchiver creates a new in-memory archiver
func NewMockArchiver() *MockArchiver {
	return &MockArchiver{Objects: make(map[string][]byte)}
}

// GenerateArchiveKey returns a deterministic key
func (m *MockArchiver) GenerateArchiveKey(batchID, fileName string) string {
	return fmt.Sprintf("uploads/%s_%s", batchID, fileName)
}

// Archive stores body in memory
func (m *MockArchiver) Archive(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if m.ArchiveFunc != nil {
		return m.ArchiveFunc(ctx, key, body, contentType)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = data
	return "mock://" + key, nil
}

// Object returns an archived object
func (m *MockArchiver) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[key]
	return data, ok
}
