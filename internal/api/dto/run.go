package dto

import (
	"ht-planning-service/internal/adapters/feed"
	"time"
)

// CreateRunRequest submits a job list. Zero-valued tuning fields fall back to the
// server configuration.
type CreateRunRequest struct {
	Jobs        []feed.JobSeed `json:"jobs"`
	FleetSize   int            `json:"fleet_size"`
	QCLookahead *int           `json:"qc_lookahead"`
	// Block until the run finishes instead of returning 202.
	Wait bool `json:"wait"`
}

type RunResponse struct {
	RunID       string    `json:"run_id"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	Jobs        int       `json:"jobs"`
	Completed   int       `json:"completed"`
	Makespan    int64     `json:"makespan_ticks"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Error       string    `json:"error,omitempty"`
}
