package ports

import (
	"context"
	"ht-planning-service/internal/domain"
)

// Port: a boundary for reading job lists from files or request bodies.
type JobSource interface {
	// Return every job in input order.
	LoadJobs(ctx context.Context) ([]*domain.Job, error)
}
