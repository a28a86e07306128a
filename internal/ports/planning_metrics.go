package ports

import "time"

// Observability hooks called by the planner once per tick.
type PlanningMetrics interface {
	ObserveTick(d time.Duration, assignments int)
	IncAssignment(leg string)
	IncCompleted()
	SetPendingJobs(n int)
	SetYardUsage(yard string, n int)
}
