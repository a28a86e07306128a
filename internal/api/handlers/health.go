package handlers

import (
	"ht-planning-service/internal/api/dto"
	"ht-planning-service/internal/topology"
	"net/http"
)

// HealthHandler reports liveness along with the terminal being planned and the
// number of runs executing in this process.
type HealthHandler struct {
	Topo     *topology.Topology
	Registry *RunRegistry
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := dto.HealthResponse{Status: "ok"}
	if h.Registry != nil {
		res.ActiveRuns = h.Registry.Active()
	}
	if h.Topo != nil {
		res.QCs = len(h.Topo.QCs)
		res.Yards = len(h.Topo.Yards)
		res.BufferSlots = h.Topo.MaxX - h.Topo.MinX + 1
	}
	writeJSON(w, r, http.StatusOK, res)
}
