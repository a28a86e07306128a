package domain

// One dispatch decision: a truck, the job it serves, its yard and the path of the next leg.
type Assignment struct {
	Tick     int64   `json:"tick"`
	JobID    string  `json:"job_id"`
	TruckID  string  `json:"truck_id"`
	YardID   string  `json:"yard_id"`
	LegIndex int     `json:"leg_index"`
	Leg      LegType `json:"leg"`
	// Set on the job's last leg; the truck is released when it completes.
	Final bool `json:"final"`
	Path  Path `json:"path"`
	// Heuristic cost of the pairing; zero for continuation legs.
	Cost float64 `json:"cost"`
}

// Everything the planner emitted during one tick.
type Batch struct {
	Tick        int64        `json:"tick"`
	Assignments []Assignment `json:"assignments"`
}

// Operation Engine report: a truck finished its job and parked at At.
type TruckFreed struct {
	TruckID string
	At      Coordinate
	Tick    int64
}

// Operation Engine report: leg LegIndex of a job has been driven and worked.
type LegCompleted struct {
	JobID    string
	LegIndex int
	Tick     int64
}

// Events delivered to the planner for one tick.
type TickEvents struct {
	Freed     []TruckFreed
	Completed []LegCompleted
	Arrivals  []*Job
}

// Persisted result of a finished job.
type JobOutcome struct {
	JobID     string  `json:"job_id"`
	Kind      JobKind `json:"job_type"`
	TruckID   string  `json:"assigned_truck"`
	YardID    string  `json:"assigned_yard"`
	StartTick int64   `json:"start_time"`
	EndTick   int64   `json:"end_time"`
}
