package dto

type HealthResponse struct {
	Status      string `json:"status"`
	ActiveRuns  int    `json:"active_runs"`
	QCs         int    `json:"qcs"`
	Yards       int    `json:"yards"`
	BufferSlots int    `json:"buffer_slots"`
}
