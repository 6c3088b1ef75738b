package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockS3Service is an in-memory implementation of S3Interface for testing
type MockS3Service struct {
	objects map[string][]byte // map of object key to content
	mu      sync.RWMutex
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		objects: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global S3 service instance for testing
func (m *MockS3Service) SetAsMockForTesting() {
	SetS3Service(m)
}

// UploadObject stores the content under the key and returns a mock public URL
func (m *MockS3Service) UploadObject(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	stored := make([]byte, len(content))
	copy(stored, content)

	m.mu.Lock()
	m.objects[key] = stored
	m.mu.Unlock()

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s", key), nil
}

// DeleteObjectByURL removes the object addressed by a mock public URL
func (m *MockS3Service) DeleteObjectByURL(ctx context.Context, publicURL string) error {
	if publicURL == "" {
		return nil
	}

	key := publicURL
	if idx := strings.Index(publicURL, ".amazonaws.com/"); idx >= 0 {
		key = publicURL[idx+len(".amazonaws.com/"):]
	}

	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()

	return nil
}

// ObjectContent returns the stored content for a key (for testing assertions)
func (m *MockS3Service) ObjectContent(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.objects[key]
	return content, ok
}

// ObjectKeys returns all stored keys (for testing assertions)
func (m *MockS3Service) ObjectKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

// ObjectExists checks if an object exists in mock storage
func (m *MockS3Service) ObjectExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.objects[key]
	return exists
}

// Clear removes all objects from mock storage
func (m *MockS3Service) Clear() {
	m.mu.Lock()
	m.objects = make(map[string][]byte)
	m.mu.Unlock()
}
