package noop

import (
	"context"
	"log"

	"bolx/internal/domain"
	"bolx/internal/email"
	"bolx/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a Notifier that only logs the summary.
func NewNoopSender() port.Notifier {
	return &noopSender{}
}

func (s *noopSender) SendBatchSummary(_ context.Context, to string, summary domain.BatchSummary, _ []domain.DocumentResult) error {
	log.Printf("[NOOP EMAIL] %s -> %s", email.Subject(summary), to)
	return nil
}
