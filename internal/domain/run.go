package domain

import "time"

type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunComplete RunStatus = "complete"
	RunFailed   RunStatus = "failed"
)

// Summary of one simulation run, stored next to its job outcomes.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	Status      RunStatus `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	Jobs        int       `json:"jobs"`
	Completed   int       `json:"completed"`
	Makespan    int64     `json:"makespan_ticks"`
	Fingerprint string    `json:"fingerprint"`
	Error       string    `json:"error,omitempty"`
}
