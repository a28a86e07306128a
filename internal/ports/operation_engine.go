package ports

import "ht-planning-service/internal/domain"

// Contract of the collaborator that drives trucks along planned paths.
type OperationEngine interface {
	// Accept the assignments emitted for one tick.
	Dispatch(batch domain.Batch)
	// Return the completion and release events that happened at or before tick.
	Advance(tick int64) domain.TickEvents
	// Number of legs still being executed.
	InFlight() int
}
