package dto

type OutcomeResponse struct {
	JobID     string `json:"job_id"`
	JobType   string `json:"job_type"`
	TruckID   string `json:"assigned_truck"`
	YardID    string `json:"assigned_yard"`
	StartTick int64  `json:"start_time"`
	EndTick   int64  `json:"end_time"`
}

type ListOutcomesResponse struct {
	RunID    string            `json:"run_id"`
	Outcomes []OutcomeResponse `json:"outcomes"`
}
