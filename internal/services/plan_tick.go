package services

import (
	"cmp"
	"errors"
	"fmt"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/ports"
	"ht-planning-service/internal/topology"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// Planner is the per-tick orchestrator. It is not safe for concurrent use; one
// planner drives one run.
type Planner struct {
	router    ports.Router
	topo      *topology.Topology
	weights   config.Weights
	lookahead int
	state     *State
	yards     *YardSelector
	trucks    *TruckSelector
	log       *slog.Logger
	metrics   ports.PlanningMetrics
}

type PlannerOption func(*Planner)

// WithDecisionLog records every planning decision on l.
func WithDecisionLog(l *slog.Logger) PlannerOption {
	return func(p *Planner) { p.log = l }
}

func WithMetrics(m ports.PlanningMetrics) PlannerOption {
	return func(p *Planner) { p.metrics = m }
}

// WithQCLookahead limits how many jobs per quay crane may be planned ahead of the
// oldest unfinished one. 0 disables the limit.
func WithQCLookahead(n int) PlannerOption {
	return func(p *Planner) { p.lookahead = n }
}

// NewPlanner validates the weights and registers the fleet.
func NewPlanner(
	router ports.Router,
	topo *topology.Topology,
	weights config.Weights,
	trucks []*domain.Truck,
	opts ...PlannerOption,
) (*Planner, error) {
	if router == nil || topo == nil {
		return nil, errors.New("new planner: router and topology are required")
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("new planner: %w", err)
	}
	state, err := NewState(topo, trucks)
	if err != nil {
		return nil, fmt.Errorf("new planner: %w", err)
	}

	p := &Planner{
		router:  router,
		topo:    topo,
		weights: weights,
		state:   state,
		yards:   &YardSelector{Router: router, Topo: topo, Weights: weights},
		trucks:  &TruckSelector{Router: router, Topo: topo, Weights: weights},
		log:     slog.New(slog.DiscardHandler),
		metrics: nopMetrics{},
	}
	for _, o := range opts {
		o(p)
	}
	if p.lookahead < 0 {
		return nil, fmt.Errorf("new planner: %w: negative qc lookahead %d", domain.ErrConfiguration, p.lookahead)
	}
	return p, nil
}

// Submit registers jobs ahead of time; each becomes plannable at its arrival tick.
func (p *Planner) Submit(jobs []*domain.Job) error {
	if err := p.state.AddJobs(jobs); err != nil {
		return fmt.Errorf("submit jobs: %w", err)
	}
	for _, j := range jobs {
		p.log.Info("ingest", "job", j.ID, "kind", string(j.Kind), "qc", j.QC, "arrival", j.ArrivalTick)
	}
	return nil
}

func (p *Planner) State() *State { return p.state }

// Done reports whether every submitted job is complete.
func (p *Planner) Done() bool { return p.state.Done() }

// Waiting reports whether some submitted job has not arrived by tick.
func (p *Planner) Waiting(tick int64) bool {
	for _, j := range p.state.jobs {
		if j.Status == domain.JobPending && j.ArrivalTick > tick {
			return true
		}
	}
	return false
}

// Step runs one planning tick:
//  1. ingest arrivals, leg completions and freed trucks;
//  2. choose yards for released pending jobs;
//  3. hand the next leg to trucks whose job is already under way;
//  4. pair remaining jobs with idle trucks and route their first leg.
//
// Any returned error aborts the run; the state is then no longer consistent.
func (p *Planner) Step(tick int64, ev domain.TickEvents) (domain.Batch, error) {
	started := time.Now()
	if tick <= p.state.Tick {
		return domain.Batch{}, fmt.Errorf("plan tick %d: %w: tick must advance past %d", tick, domain.ErrInputValidation, p.state.Tick)
	}
	p.state.Tick = tick
	batch := domain.Batch{Tick: tick, Assignments: []domain.Assignment{}}

	if len(ev.Arrivals) > 0 {
		if err := p.Submit(ev.Arrivals); err != nil {
			return domain.Batch{}, fmt.Errorf("plan tick %d: %w", tick, err)
		}
	}
	if err := p.applyCompletions(tick, ev.Completed); err != nil {
		return domain.Batch{}, fmt.Errorf("plan tick %d: %w", tick, err)
	}
	if err := p.applyFreed(tick, ev.Freed); err != nil {
		return domain.Batch{}, fmt.Errorf("plan tick %d: %w", tick, err)
	}
	if err := p.assignYards(tick); err != nil {
		return domain.Batch{}, fmt.Errorf("plan tick %d: %w", tick, err)
	}

	cont, err := p.dispatchContinuations(tick)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("plan tick %d: %w", tick, err)
	}
	batch.Assignments = append(batch.Assignments, cont...)

	fresh, err := p.assignTrucks(tick)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("plan tick %d: %w", tick, err)
	}
	batch.Assignments = append(batch.Assignments, fresh...)

	p.report(started, batch)
	return batch, nil
}

func (p *Planner) applyCompletions(tick int64, events []domain.LegCompleted) error {
	events = slices.Clone(events)
	slices.SortFunc(events, func(a, b domain.LegCompleted) int {
		return cmp.Or(strings.Compare(a.JobID, b.JobID), cmp.Compare(a.LegIndex, b.LegIndex))
	})

	for _, ev := range events {
		job, ok := p.state.Job(ev.JobID)
		if !ok {
			return fmt.Errorf("leg completed: %w %q", domain.ErrUnknownJob, ev.JobID)
		}
		done, err := job.CompleteLeg(ev.LegIndex, ev.Tick)
		if err != nil {
			return fmt.Errorf("leg completed: %w", err)
		}
		p.log.Info("leg_complete", "tick", tick, "job", job.ID, "truck", job.TruckID, "leg", ev.LegIndex, "at", ev.Tick)
		if done {
			p.state.addUsage(job.YardID, -1)
			p.metrics.IncCompleted()
			p.log.Info("job_complete", "tick", tick, "job", job.ID, "truck", job.TruckID, "yard", job.YardID,
				"start", job.StartTick, "end", job.EndTick)
		}
	}
	return nil
}

func (p *Planner) applyFreed(tick int64, events []domain.TruckFreed) error {
	events = slices.Clone(events)
	slices.SortFunc(events, func(a, b domain.TruckFreed) int { return strings.Compare(a.TruckID, b.TruckID) })

	for _, ev := range events {
		truck, ok := p.state.Truck(ev.TruckID)
		if !ok {
			return fmt.Errorf("truck freed: %w %q", domain.ErrUnknownTruck, ev.TruckID)
		}
		if truck.Status != domain.TruckBusy {
			return fmt.Errorf("truck freed: %w: truck %s is not busy", domain.ErrInputValidation, truck.ID)
		}
		if job, ok := p.state.Job(truck.JobID); ok && job.Status != domain.JobComplete {
			return fmt.Errorf("truck freed: %w: truck %s released before job %s completed",
				domain.ErrInputValidation, truck.ID, job.ID)
		}
		if !p.topo.IsBufferSlot(ev.At) {
			return fmt.Errorf("truck freed: %w: truck %s parked at %v, not a buffer slot",
				domain.ErrInputValidation, truck.ID, ev.At)
		}
		truck.Release(ev.At)
		p.log.Info("truck_freed", "tick", tick, "truck", truck.ID, "at", ev.At.String())
	}
	return nil
}

// assignYards gives every released pending job its yard, in arrival order.
func (p *Planner) assignYards(tick int64) error {
	released := p.state.qcReleased(p.lookahead)
	for _, job := range p.state.JobsWithStatus(domain.JobPending) {
		if job.ArrivalTick > tick || (job.QC != "" && !released[job.ID]) {
			continue
		}

		if job.YardOverride != "" {
			job.YardID = job.YardOverride
			p.state.addUsage(job.YardID, 1)
			job.Status = domain.JobYardAssigned
			p.log.Info("yard", "tick", tick, "job", job.ID, "yard", job.YardID, "pinned", true)
			continue
		}

		choice, err := p.yards.Select(job, yardAnchor(p.topo, job), p.state)
		if err != nil {
			return err
		}
		job.YardID = choice.YardID
		job.Status = domain.JobYardAssigned
		p.log.Info("yard", "tick", tick, "job", job.ID, "yard", choice.YardID,
			"score", fmt.Sprintf("%.3f", choice.Score), "steps", choice.Steps)
	}
	return nil
}

// dispatchContinuations routes the next leg of jobs whose previous leg has completed.
func (p *Planner) dispatchContinuations(tick int64) ([]domain.Assignment, error) {
	var out []domain.Assignment
	for _, job := range p.state.JobsWithStatus(domain.JobInProgress) {
		if !job.NeedsDispatch() {
			continue
		}
		a, err := p.dispatch(tick, job, 0)
		if err != nil {
			return nil, err
		}
		if truck, ok := p.state.Truck(job.TruckID); ok {
			truck.Record(tick, p.weights.RecencyHistory)
		}
		out = append(out, a)
	}
	return out, nil
}

func (p *Planner) assignTrucks(tick int64) ([]domain.Assignment, error) {
	jobs := p.state.JobsWithStatus(domain.JobYardAssigned)
	idle := p.state.IdleTrucks()
	if len(jobs) == 0 || len(idle) == 0 {
		return nil, nil
	}

	pairings, err := p.trucks.Select(jobs, idle, tick)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Assignment, 0, len(pairings))
	for _, pr := range pairings {
		if err := pr.Job.Bind(pr.Truck.ID, pr.Truck.Pos, tick); err != nil {
			return nil, err
		}
		if err := pr.Truck.Assign(pr.Job.ID, tick, p.weights.RecencyHistory); err != nil {
			return nil, err
		}
		a, err := p.dispatch(tick, pr.Job, pr.Cost)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// dispatch computes the path of the job's next leg and marks it handed off.
func (p *Planner) dispatch(tick int64, job *domain.Job, cost float64) (domain.Assignment, error) {
	idx := job.Dispatched
	leg := job.NextLeg()
	start, end, err := legEndpoints(p.topo, job, leg, job.Home)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("dispatch job %s leg %d: %w", job.ID, idx, err)
	}
	path, err := p.router.Path(leg, start, end)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("dispatch job %s leg %d: %w", job.ID, idx, err)
	}
	job.Dispatched++

	a := domain.Assignment{
		Tick:     tick,
		JobID:    job.ID,
		TruckID:  job.TruckID,
		YardID:   job.YardID,
		LegIndex: idx,
		Leg:      leg,
		Final:    idx == len(job.Legs)-1,
		Path:     path,
		Cost:     cost,
	}
	p.metrics.IncAssignment(leg.String())
	p.log.Info("assign", "tick", tick, "job", job.ID, "truck", job.TruckID, "yard", job.YardID,
		"leg", idx, "kind", leg.String(), "cost", fmt.Sprintf("%.3f", cost), "steps", path.Steps())
	return a, nil
}

func (p *Planner) report(started time.Time, batch domain.Batch) {
	p.metrics.ObserveTick(time.Since(started), len(batch.Assignments))
	pending := 0
	for _, j := range p.state.jobs {
		if j.Status == domain.JobPending || j.Status == domain.JobYardAssigned {
			pending++
		}
	}
	p.metrics.SetPendingJobs(pending)
	for id, n := range p.state.UsageSnapshot() {
		p.metrics.SetYardUsage(id, n)
	}
}

// Outcomes returns the completed jobs ordered by end tick, then id.
func (p *Planner) Outcomes() []domain.JobOutcome {
	var out []domain.JobOutcome
	for _, j := range p.state.AllJobs() {
		if j.Status != domain.JobComplete {
			continue
		}
		out = append(out, domain.JobOutcome{
			JobID:     j.ID,
			Kind:      j.Kind,
			TruckID:   j.TruckID,
			YardID:    j.YardID,
			StartTick: j.StartTick,
			EndTick:   j.EndTick,
		})
	}
	slices.SortStableFunc(out, func(a, b domain.JobOutcome) int {
		return cmp.Or(cmp.Compare(a.EndTick, b.EndTick), strings.Compare(a.JobID, b.JobID))
	})
	return out
}

type nopMetrics struct{}

func (nopMetrics) ObserveTick(time.Duration, int) {}
func (nopMetrics) IncAssignment(string)           {}
func (nopMetrics) IncCompleted()                  {}
func (nopMetrics) SetPendingJobs(int)             {}
func (nopMetrics) SetYardUsage(string, int)       {}
