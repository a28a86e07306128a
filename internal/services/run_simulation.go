package services

import (
	"context"
	"errors"
	"fmt"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/platform/obs"
	"ht-planning-service/internal/ports"
	"log"
)

// SimulationResult is everything a finished run produced.
type SimulationResult struct {
	Outcomes    []domain.JobOutcome
	Batches     []domain.Batch
	Makespan    int64
	Fingerprint string
}

// RunSimulation drives planner and engine tick by tick until every job is complete.
//
// Engine events are collected every tick and handed to the planner every
// PlanningInterval ticks. Batches are published when publisher is non-nil.
// The run fails with domain.ErrStalled when nothing happens for StallTicks ticks.
func RunSimulation(
	ctx context.Context,
	runID string,
	planner *Planner,
	engine ports.OperationEngine,
	sim config.Simulation,
	publisher ports.BatchPublisher,
) (_ SimulationResult, err error) {
	defer obs.Time(ctx, "simulation.Run")(&err)

	if planner == nil || engine == nil {
		return SimulationResult{}, errors.New("run simulation: planner and engine are required")
	}
	if err := sim.Validate(); err != nil {
		return SimulationResult{}, fmt.Errorf("run simulation: %w", err)
	}

	var (
		res     SimulationResult
		pending domain.TickEvents
		quiet   int
	)
	interval := int64(sim.PlanningInterval)

	for tick := int64(0); !planner.Done(); tick++ {
		if err := ctx.Err(); err != nil {
			return SimulationResult{}, fmt.Errorf("run simulation: tick %d: %w", tick, err)
		}

		ev := engine.Advance(tick)
		pending.Freed = append(pending.Freed, ev.Freed...)
		pending.Completed = append(pending.Completed, ev.Completed...)
		progressed := len(ev.Freed)+len(ev.Completed) > 0

		if tick%interval == 0 {
			batch, err := planner.Step(tick, pending)
			if err != nil {
				return SimulationResult{}, fmt.Errorf("run simulation: %w", err)
			}
			pending = domain.TickEvents{}

			if len(batch.Assignments) > 0 {
				progressed = true
				engine.Dispatch(batch)
				res.Batches = append(res.Batches, batch)
				if publisher != nil {
					if err := publisher.Publish(ctx, runID, batch); err != nil {
						return SimulationResult{}, fmt.Errorf("run simulation: publish tick %d: %w", tick, err)
					}
				}
			}
		}

		if progressed || engine.InFlight() > 0 || planner.Waiting(tick) {
			quiet = 0
		} else if quiet++; quiet > sim.StallTicks {
			return SimulationResult{}, fmt.Errorf("run simulation: %w after %d idle ticks at tick %d", domain.ErrStalled, quiet, tick)
		}
	}

	res.Outcomes = planner.Outcomes()
	for _, o := range res.Outcomes {
		res.Makespan = max(res.Makespan, o.EndTick)
	}
	res.Fingerprint = Fingerprint(res.Batches)
	log.Printf("run_id=%s jobs=%d batches=%d makespan=%d fingerprint=%s",
		runID, len(res.Outcomes), len(res.Batches), res.Makespan, res.Fingerprint)
	return res, nil
}
