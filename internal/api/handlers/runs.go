package handlers

import (
	"context"
	"errors"
	"ht-planning-service/internal/adapters/feed"
	"ht-planning-service/internal/api/dto"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/ports"
	"ht-planning-service/internal/services"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RunHandler starts simulation runs and serves their stored results.
type RunHandler struct {
	Service  *services.RunService
	Repo     ports.OutcomeRepository
	Registry *RunRegistry
	Defaults config.Config
	// Parent context of background runs; cancelled on shutdown.
	BaseCtx context.Context
}

func (h *RunHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRunRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Jobs) == 0 {
		writeError(w, r, http.StatusBadRequest, "jobs must not be empty")
		return
	}

	jobs, err := feed.ToJobs(req.Jobs)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sim := h.Defaults.Simulation
	if req.FleetSize != 0 {
		sim.FleetSize = req.FleetSize
	}
	if req.QCLookahead != nil {
		sim.QCLookahead = *req.QCLookahead
	}
	if err := sim.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	runReq := services.RunRequest{
		RunID:   uuid.NewString(),
		Jobs:    jobs,
		Weights: h.Defaults.Weights,
		Sim:     sim,
	}

	if req.Wait {
		rep, err := h.Service.Execute(r.Context(), runReq)
		if errors.Is(err, domain.ErrInputValidation) || errors.Is(err, domain.ErrConfiguration) {
			h.writeRunError(w, r, err)
			return
		}
		if err != nil && rep.Summary.Status != domain.RunFailed {
			h.writeRunError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, toRunResponse(rep.Summary))
		return
	}

	pending := domain.RunSummary{
		RunID:     runReq.RunID,
		Status:    domain.RunRunning,
		StartedAt: time.Now().UTC(),
		Jobs:      len(jobs),
	}
	base := h.BaseCtx
	if base == nil {
		base = context.Background()
	}
	h.Registry.Start(pending, func() {
		if _, err := h.Service.Execute(base, runReq); err != nil {
			log.Printf("run_id=%s failed: %v", runReq.RunID, err)
		}
	})

	w.Header().Set("Location", "/runs/"+runReq.RunID)
	writeJSON(w, r, http.StatusAccepted, toRunResponse(pending))
}

func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")

	run, err := h.Repo.GetRun(r.Context(), runID)
	if errors.Is(err, domain.ErrRunNotFound) {
		if active, ok := h.Registry.Get(runID); ok {
			writeJSON(w, r, http.StatusOK, toRunResponse(active))
			return
		}
	}
	if err != nil {
		h.writeRunError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRunResponse(run))
}

func (h *RunHandler) Outcomes(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")

	outcomes, err := h.Repo.ListOutcomes(r.Context(), runID)
	if err != nil {
		h.writeRunError(w, r, err)
		return
	}

	res := dto.ListOutcomesResponse{
		RunID:    runID,
		Outcomes: make([]dto.OutcomeResponse, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		res.Outcomes = append(res.Outcomes, dto.OutcomeResponse{
			JobID:     o.JobID,
			JobType:   string(o.Kind),
			TruckID:   o.TruckID,
			YardID:    o.YardID,
			StartTick: o.StartTick,
			EndTick:   o.EndTick,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *RunHandler) writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		writeError(w, r, http.StatusNotFound, "run not found")
	case errors.Is(err, domain.ErrInputValidation), errors.Is(err, domain.ErrConfiguration):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("run request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func toRunResponse(s domain.RunSummary) dto.RunResponse {
	return dto.RunResponse{
		RunID:       s.RunID,
		Status:      string(s.Status),
		StartedAt:   s.StartedAt,
		Jobs:        s.Jobs,
		Completed:   s.Completed,
		Makespan:    s.Makespan,
		Fingerprint: s.Fingerprint,
		Error:       s.Error,
	}
}
