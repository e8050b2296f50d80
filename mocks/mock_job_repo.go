package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"bolx/internal/domain"
)

// MockJobRepo is a mock implementation of port.JobRepository.
type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Create(ctx context.Context, job *domain.ExtractionJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionJob), args.Error(1)
}

func (m *MockJobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ExtractionJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractionJob), args.Error(1)
}

func (m *MockJobRepo) MarkCompleted(ctx context.Context, id, resultID uuid.UUID) error {
	args := m.Called(ctx, id, resultID)
	return args.Error(0)
}

func (m *MockJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string, requeue bool) error {
	args := m.Called(ctx, id, reason, requeue)
	return args.Error(0)
}
