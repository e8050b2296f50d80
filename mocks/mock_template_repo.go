package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bolx/internal/domain"
)

// MockTemplateRepo is a mock implementation of port.TemplateRepository.
type MockTemplateRepo struct {
	mock.Mock
}

func (m *MockTemplateRepo) Upsert(ctx context.Context, rec *domain.TemplateRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockTemplateRepo) GetByID(ctx context.Context, id string) (*domain.TemplateRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TemplateRecord), args.Error(1)
}

func (m *MockTemplateRepo) List(ctx context.Context) ([]domain.TemplateRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TemplateRecord), args.Error(1)
}

func (m *MockTemplateRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
