package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/nocyshop/nocy-shop-api/models"
)

// MockNotifier is a mock implementation of NotifierInterface for testing
type MockNotifier struct {
	notified []string // order numbers in notification order
	mu       sync.RWMutex

	// FailNotify makes NotifyNewOrder return an error when set
	FailNotify bool
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// SetAsMockForTesting sets this mock as the global notifier instance for testing
func (m *MockNotifier) SetAsMockForTesting() {
	SetNotifier(m)
}

// NotifyNewOrder records the order number
func (m *MockNotifier) NotifyNewOrder(ctx context.Context, order *models.Order) error {
	if m.FailNotify {
		return fmt.Errorf("mock notify failure")
	}

	m.mu.Lock()
	m.notified = append(m.notified, order.OrderNo)
	m.mu.Unlock()

	return nil
}

// NotifiedOrders returns the recorded order numbers
func (m *MockNotifier) NotifiedOrders() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.notified))
	copy(out, m.notified)
	return out
}

// Clear resets the mock state
func (m *MockNotifier) Clear() {
	m.mu.Lock()
	m.notified = nil
	m.mu.Unlock()
}
