package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bolx/internal/domain"
	"bolx/internal/service"
)

// MockTemplateService is a mock implementation of service.TemplateService.
type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) List(ctx context.Context) []service.TemplateSummary {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]service.TemplateSummary)
}

func (m *MockTemplateService) Get(ctx context.Context, id string) (*domain.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Template), args.Error(1)
}

func (m *MockTemplateService) Reload(ctx context.Context) (*service.ReloadResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReloadResult), args.Error(1)
}

func (m *MockTemplateService) Save(ctx context.Context, name string, data []byte) (*domain.Template, error) {
	args := m.Called(ctx, name, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Template), args.Error(1)
}
