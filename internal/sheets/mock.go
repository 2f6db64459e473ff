package sheets

import (
	"context"
	"sync"

	"github.com/eccentricworkshop/receiptflow/internal/model"
	"github.com/eccentricworkshop/receiptflow/internal/service"
)

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	WriteFunc      func(ctx context.Context, groups []*model.ReceiptGroup, window service.DateRange) error
	LastGroups     []*model.ReceiptGroup
	LastWindow     service.DateRange
	WriteCallCount int
	mu             sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements the ReportWriter interface.
func (m *MockWriter) Write(ctx context.Context, groups []*model.ReceiptGroup, window service.DateRange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastGroups = groups
	m.LastWindow = window

	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, groups, window)
	}
	return nil
}

// Reset clears all recorded calls.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount = 0
	m.LastGroups = nil
	m.LastWindow = service.DateRange{}
}
