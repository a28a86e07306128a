package ports

import (
	"context"
	"ht-planning-service/internal/domain"
)

// Port: hands tick batches to whoever executes them.
type BatchPublisher interface {
	Publish(ctx context.Context, runID string, batch domain.Batch) error
}
