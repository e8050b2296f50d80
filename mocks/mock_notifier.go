package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bolx/internal/domain"
)

// MockNotifier is a mock implementation of port.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendBatchSummary(ctx context.Context, to string, summary domain.BatchSummary, results []domain.DocumentResult) error {
	args := m.Called(ctx, to, summary, results)
	return args.Error(0)
}
