package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/nocyshop/nocy-shop-api/utils"
)

// MockImageService is a mock implementation of ImageService for testing.
// It skips compression entirely and records every upload and delete.
type MockImageService struct {
	uploads map[string][]byte // URL -> original content
	deleted []string
	mu      sync.RWMutex

	// FailUploads makes UploadImage return an error when set
	FailUploads bool

	// FailDeletes makes DeleteImage return an error when set
	FailDeletes bool
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{
		uploads: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global image service instance for testing
func (m *MockImageService) SetAsMockForTesting() {
	SetImageService(m)
}

// UploadImage records the file and returns a deterministic mock URL
func (m *MockImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader, role ImageRole) (string, error) {
	if m.FailUploads {
		return "", fmt.Errorf("mock upload failure")
	}

	content, err := utils.ReadMultipartFile(fileHeader)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/mock-%s/%s", role, fileHeader.Filename)

	m.mu.Lock()
	m.uploads[url] = content
	m.mu.Unlock()

	return url, nil
}

// DeleteImage records the deleted URL
func (m *MockImageService) DeleteImage(ctx context.Context, imageURL string) error {
	if m.FailDeletes {
		return fmt.Errorf("mock delete failure")
	}

	if imageURL == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.uploads, imageURL)
	m.deleted = append(m.deleted, imageURL)
	m.mu.Unlock()

	return nil
}

// UploadedContent returns the stored content for a URL (for testing assertions)
func (m *MockImageService) UploadedContent(url string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.uploads[url]
	return content, ok
}

// DeletedURLs returns every URL passed to DeleteImage
func (m *MockImageService) DeletedURLs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.deleted))
	copy(out, m.deleted)
	return out
}

// Clear resets the mock state
func (m *MockImageService) Clear() {
	m.mu.Lock()
	m.uploads = make(map[string][]byte)
	m.deleted = nil
	m.mu.Unlock()
}
