package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"bolx/internal/domain"
	"bolx/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Extract(ctx context.Context, doc domain.SourceDocument) (*service.ExtractionOutput, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExtractionOutput), args.Error(1)
}

func (m *MockExtractionService) ExtractBatch(ctx context.Context, docs []domain.SourceDocument) (*service.BatchOutput, error) {
	args := m.Called(ctx, docs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchOutput), args.Error(1)
}

func (m *MockExtractionService) GetResult(ctx context.Context, id uuid.UUID) (*domain.ExtractionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionRecord), args.Error(1)
}

func (m *MockExtractionService) ListResults(ctx context.Context, offset, limit int) ([]domain.ExtractionRecord, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExtractionRecord), args.Int(1), args.Error(2)
}

func (m *MockExtractionService) EnqueueJob(ctx context.Context, sourceKey string) (*domain.ExtractionJob, error) {
	args := m.Called(ctx, sourceKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionJob), args.Error(1)
}

func (m *MockExtractionService) GetJob(ctx context.Context, id uuid.UUID) (*domain.ExtractionJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionJob), args.Error(1)
}

func (m *MockExtractionService) ProcessJob(ctx context.Context, job *domain.ExtractionJob, maxAttempts int) {
	m.Called(ctx, job, maxAttempts)
}
