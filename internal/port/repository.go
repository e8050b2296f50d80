package port

import (
	"context"

	"github.com/google/uuid"

	"bolx/internal/domain"
)

// TemplateRepository defines the contract for template persistence.
type TemplateRepository interface {
	Upsert(ctx context.Context, rec *domain.TemplateRecord) error
	GetByID(ctx context.Context, id string) (*domain.TemplateRecord, error)
	List(ctx context.Context) ([]domain.TemplateRecord, error)
	Delete(ctx context.Context, id string) error
}

// ExtractionRepository defines the contract for extraction result persistence.
type ExtractionRepository interface {
	Create(ctx context.Context, rec *domain.ExtractionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRecord, error)
	List(ctx context.Context, offset, limit int) ([]domain.ExtractionRecord, int, error)
	SetOutputKey(ctx context.Context, id uuid.UUID, key string) error
}

// JobRepository defines the contract for the extraction job queue.
type JobRepository interface {
	Create(ctx context.Context, job *domain.ExtractionJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionJob, error)
	// ClaimQueued atomically moves up to limit queued jobs to processing and
	// returns them.
	ClaimQueued(ctx context.Context, limit int) ([]domain.ExtractionJob, error)
	MarkCompleted(ctx context.Context, id, resultID uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, requeue bool) error
}
