package port

import (
	"context"

	"bolx/internal/domain"
)

// Notifier delivers batch completion summaries.
type Notifier interface {
	SendBatchSummary(ctx context.Context, to string, summary domain.BatchSummary, results []domain.DocumentResult) error
}
