package ports

import (
	"context"
	"ht-planning-service/internal/domain"
)

// Port: persistence for run summaries and their job outcomes.
type OutcomeRepository interface {
	SaveRun(ctx context.Context, run domain.RunSummary, outcomes []domain.JobOutcome) error
	GetRun(ctx context.Context, runID string) (domain.RunSummary, error)
	ListOutcomes(ctx context.Context, runID string) ([]domain.JobOutcome, error)
}
