package port

import (
	"context"

	"github.com/google/uuid"

	"facturo/internal/domain"
)

// JobStore defines the contract for processing-job persistence. The default
// implementation is in-memory; the interface keeps a durable store
// swappable without touching the pipeline.
type JobStore interface {
	Create(ctx context.Context, job *domain.Job) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	Update(ctx context.Context, job *domain.Job) error
	List(ctx context.Context, offset, limit int) ([]domain.Job, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
