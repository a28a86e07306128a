package services

import (
	"context"
	"errors"
	"fmt"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/platform/obs"
	"ht-planning-service/internal/ports"
	"ht-planning-service/internal/topology"
	"log"
	"log/slog"
	"time"
)

// EngineFactory builds a fresh operation engine for one run.
type EngineFactory func(sim config.Simulation) ports.OperationEngine

// RunService executes complete simulation runs and records them.
// Repo, Publisher, Metrics and DecisionLog are optional.
type RunService struct {
	Topo        *topology.Topology
	Router      ports.Router
	NewEngine   EngineFactory
	Repo        ports.OutcomeRepository
	Publisher   ports.BatchPublisher
	Metrics     ports.PlanningMetrics
	DecisionLog *slog.Logger
}

type RunRequest struct {
	RunID   string
	Jobs    []*domain.Job
	Weights config.Weights
	Sim     config.Simulation
}

type RunReport struct {
	Summary domain.RunSummary
	Result  SimulationResult
}

// Execute plans and simulates req.Jobs on a fresh fleet. The summary is stored as
// running before the first tick and replaced by the final state afterwards, so a
// failed run is still recorded.
func (s *RunService) Execute(ctx context.Context, req RunRequest) (_ RunReport, err error) {
	ctx = obs.WithRunID(ctx, req.RunID)
	defer obs.Time(ctx, "run.Execute")(&err)

	if s.Topo == nil || s.Router == nil || s.NewEngine == nil {
		return RunReport{}, errors.New("execute run: topology, router and engine factory are required")
	}
	if req.RunID == "" {
		return RunReport{}, fmt.Errorf("execute run: %w: run id must not be empty", domain.ErrInputValidation)
	}
	if err := req.Sim.Validate(); err != nil {
		return RunReport{}, fmt.Errorf("execute run: %w", err)
	}

	summary := domain.RunSummary{
		RunID:     req.RunID,
		Status:    domain.RunRunning,
		StartedAt: time.Now().UTC(),
		Jobs:      len(req.Jobs),
	}

	planner, err := s.planner(req)
	if err != nil {
		summary.Status = domain.RunFailed
		summary.Error = err.Error()
		if serr := s.save(context.WithoutCancel(ctx), summary, nil); serr != nil {
			log.Printf("run_id=%s save rejected run: %v", req.RunID, serr)
		}
		return RunReport{Summary: summary}, fmt.Errorf("execute run %s: %w", req.RunID, err)
	}
	if err := s.save(ctx, summary, nil); err != nil {
		return RunReport{Summary: summary}, fmt.Errorf("execute run %s: %w", req.RunID, err)
	}

	res, runErr := RunSimulation(ctx, req.RunID, planner, s.NewEngine(req.Sim), req.Sim, s.Publisher)
	if runErr != nil {
		summary.Status = domain.RunFailed
		summary.Error = runErr.Error()
		summary.Completed = len(planner.Outcomes())
		// Record the failure even when ctx was cancelled.
		if err := s.save(context.WithoutCancel(ctx), summary, planner.Outcomes()); err != nil {
			log.Printf("run_id=%s save failed run: %v", req.RunID, err)
		}
		return RunReport{Summary: summary}, fmt.Errorf("execute run %s: %w", req.RunID, runErr)
	}

	summary.Status = domain.RunComplete
	summary.Completed = len(res.Outcomes)
	summary.Makespan = res.Makespan
	summary.Fingerprint = res.Fingerprint
	if err := s.save(ctx, summary, res.Outcomes); err != nil {
		return RunReport{Summary: summary, Result: res}, fmt.Errorf("execute run %s: %w", req.RunID, err)
	}
	return RunReport{Summary: summary, Result: res}, nil
}

func (s *RunService) planner(req RunRequest) (*Planner, error) {
	opts := []PlannerOption{WithQCLookahead(req.Sim.QCLookahead)}
	if s.DecisionLog != nil {
		opts = append(opts, WithDecisionLog(s.DecisionLog.With("run", req.RunID)))
	}
	if s.Metrics != nil {
		opts = append(opts, WithMetrics(s.Metrics))
	}

	planner, err := NewPlanner(s.Router, s.Topo, req.Weights, topology.DefaultFleet(s.Topo, req.Sim.FleetSize), opts...)
	if err != nil {
		return nil, err
	}
	if err := planner.Submit(req.Jobs); err != nil {
		return nil, err
	}
	return planner, nil
}

func (s *RunService) save(ctx context.Context, summary domain.RunSummary, outcomes []domain.JobOutcome) error {
	if s.Repo == nil {
		return nil
	}
	if err := s.Repo.SaveRun(ctx, summary, outcomes); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}
