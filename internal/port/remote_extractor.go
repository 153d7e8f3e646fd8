package port

import (
	"context"

	"facturo/internal/domain"
)

// RemoteExtractor abstracts the costly remote LLM extraction backend used
// when local extraction is not good enough.
type RemoteExtractor interface {
	Extract(ctx context.Context, doc *domain.DocumentContent) (*domain.InvoiceRecord, error)
}
