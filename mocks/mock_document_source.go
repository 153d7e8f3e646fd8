package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
	"facturo/internal/port"
)

// MockDocumentSource is a mock implementation of port.DocumentSource.
type MockDocumentSource struct {
	mock.Mock
}

func (m *MockDocumentSource) Parse(ctx context.Context, input port.ParseInput) (*domain.DocumentContent, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentContent), args.Error(1)
}
