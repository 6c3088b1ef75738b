package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/nocyshop/nocy-shop-api/models"
)

// MockSheetService is a mock implementation of SheetInterface for testing.
// It records payloads keyed by orderId, mirroring the destination's
// upsert-by-key behavior so idempotence can be asserted.
type MockSheetService struct {
	rows  map[string]SheetPayload // orderId -> latest row
	calls []SheetPayload
	mu    sync.RWMutex

	// FailSync makes SyncOrder return an error when set
	FailSync bool
}

// NewMockSheetService creates a new mock sheet service
func NewMockSheetService() *MockSheetService {
	return &MockSheetService{
		rows: make(map[string]SheetPayload),
	}
}

// SetAsMockForTesting sets this mock as the global sheet service instance for testing
func (m *MockSheetService) SetAsMockForTesting() {
	SetSheetService(m)
}

// SyncOrder upserts the order's row in the mock sheet
func (m *MockSheetService) SyncOrder(ctx context.Context, order *models.Order) error {
	if m.FailSync {
		return fmt.Errorf("mock sheet sync failure")
	}

	payload := BuildSheetPayload(order)

	m.mu.Lock()
	m.rows[payload.OrderID] = payload
	m.calls = append(m.calls, payload)
	m.mu.Unlock()

	return nil
}

// Row returns the latest synced row for an orderId (for testing assertions)
func (m *MockSheetService) Row(orderID string) (SheetPayload, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[orderID]
	return row, ok
}

// RowCount returns the number of distinct rows in the mock sheet
func (m *MockSheetService) RowCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// CallCount returns the number of sync calls received
func (m *MockSheetService) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls)
}

// Clear resets the mock state
func (m *MockSheetService) Clear() {
	m.mu.Lock()
	m.rows = make(map[string]SheetPayload)
	m.calls = nil
	m.mu.Unlock()
}
