package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
)

// MockRemoteExtractor is a mock implementation of port.RemoteExtractor.
type MockRemoteExtractor struct {
	mock.Mock
}

func (m *MockRemoteExtractor) Extract(ctx context.Context, doc *domain.DocumentContent) (*domain.InvoiceRecord, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceRecord), args.Error(1)
}
