package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bolx/internal/domain"
)

// MockDocumentProcessor is a mock implementation of service.DocumentProcessor.
type MockDocumentProcessor struct {
	mock.Mock
}

func (m *MockDocumentProcessor) Process(ctx context.Context, doc domain.SourceDocument) (domain.DocumentResult, error) {
	args := m.Called(ctx, doc)
	return args.Get(0).(domain.DocumentResult), args.Error(1)
}
