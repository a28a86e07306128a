package services

import (
	"cmp"
	"fmt"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/topology"
	"slices"
	"strings"
)

// State is the planner's single owner of jobs, trucks and yard usage.
// It is mutated only by the orchestrator, in its fixed processing order.
type State struct {
	Tick int64

	topo     *topology.Topology
	jobs     map[string]*domain.Job
	trucks   map[string]*domain.Truck
	truckIDs []string
	yards    map[string]*domain.Yard
	// Jobs per quay crane ordered by sequence number.
	qcQueues map[string][]*domain.Job
}

// NewState registers the fleet and the topology's yards. Truck ids must be unique
// and every truck must start on a buffer slot.
func NewState(topo *topology.Topology, trucks []*domain.Truck) (*State, error) {
	s := &State{
		Tick:     -1,
		topo:     topo,
		jobs:     map[string]*domain.Job{},
		trucks:   make(map[string]*domain.Truck, len(trucks)),
		yards:    make(map[string]*domain.Yard, len(topo.Yards)),
		qcQueues: map[string][]*domain.Job{},
	}

	for _, t := range trucks {
		if t == nil || strings.TrimSpace(t.ID) == "" {
			return nil, fmt.Errorf("new state: %w: truck with empty id", domain.ErrInputValidation)
		}
		if _, dup := s.trucks[t.ID]; dup {
			return nil, fmt.Errorf("new state: %w: duplicate truck %s", domain.ErrInputValidation, t.ID)
		}
		if !topo.IsBufferSlot(t.Pos) {
			return nil, fmt.Errorf("new state: %w: truck %s starts at %v, not a buffer slot",
				domain.ErrInputValidation, t.ID, t.Pos)
		}
		s.trucks[t.ID] = t
		s.truckIDs = append(s.truckIDs, t.ID)
	}
	slices.Sort(s.truckIDs)

	for _, g := range topo.Yards {
		s.yards[g.ID] = &domain.Yard{ID: g.ID, Entry: g.In}
	}
	return s, nil
}

// AddJobs validates and registers jobs. Nothing is registered if any job is invalid.
func (s *State) AddJobs(jobs []*domain.Job) error {
	seen := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		if j == nil {
			return fmt.Errorf("add jobs: %w: nil job", domain.ErrInputValidation)
		}
		if err := j.Validate(); err != nil {
			return fmt.Errorf("add jobs: %w", err)
		}
		if _, dup := s.jobs[j.ID]; dup || seen[j.ID] {
			return fmt.Errorf("add jobs: %w: duplicate job %s", domain.ErrInputValidation, j.ID)
		}
		seen[j.ID] = true
		if err := s.checkReferences(j); err != nil {
			return fmt.Errorf("add jobs: %w", err)
		}
	}

	for _, j := range jobs {
		j.Status = domain.JobPending
		s.jobs[j.ID] = j
		if j.QC != "" {
			q := append(s.qcQueues[j.QC], j)
			slices.SortStableFunc(q, func(a, b *domain.Job) int {
				return cmp.Or(cmp.Compare(a.QCSequence, b.QCSequence), strings.Compare(a.ID, b.ID))
			})
			s.qcQueues[j.QC] = q
		}
	}
	return nil
}

func (s *State) checkReferences(j *domain.Job) error {
	if j.QC != "" {
		if _, ok := s.topo.QC(j.QC); !ok {
			return fmt.Errorf("%w: job %s: unknown qc %q", domain.ErrInputValidation, j.ID, j.QC)
		}
	}
	for _, y := range j.CandidateYards {
		if _, ok := s.yards[y]; !ok {
			return fmt.Errorf("%w: job %s: unknown candidate yard %q", domain.ErrInputValidation, j.ID, y)
		}
	}
	if j.YardOverride != "" {
		if _, ok := s.yards[j.YardOverride]; !ok {
			return fmt.Errorf("%w: job %s: unknown yard override %q", domain.ErrInputValidation, j.ID, j.YardOverride)
		}
	}
	return nil
}

func (s *State) Job(id string) (*domain.Job, bool) {
	j, ok := s.jobs[id]
	return j, ok
}

func (s *State) Truck(id string) (*domain.Truck, bool) {
	t, ok := s.trucks[id]
	return t, ok
}

// Usage returns the active usage count of a yard.
func (s *State) Usage(yard string) int {
	if y, ok := s.yards[yard]; ok {
		return y.Usage
	}
	return 0
}

// UsageSnapshot copies every yard's usage count.
func (s *State) UsageSnapshot() map[string]int {
	out := make(map[string]int, len(s.yards))
	for id, y := range s.yards {
		out[id] = y.Usage
	}
	return out
}

func (s *State) addUsage(yard string, delta int) {
	if y, ok := s.yards[yard]; ok {
		y.Usage += delta
	}
}

// IdleTrucks returns idle trucks ordered by id.
func (s *State) IdleTrucks() []*domain.Truck {
	out := make([]*domain.Truck, 0, len(s.truckIDs))
	for _, id := range s.truckIDs {
		if t := s.trucks[id]; t.Status == domain.TruckIdle {
			out = append(out, t)
		}
	}
	return out
}

// JobsWithStatus returns jobs in the given status ordered by arrival tick, then id.
func (s *State) JobsWithStatus(status domain.JobStatus) []*domain.Job {
	var out []*domain.Job
	for _, j := range s.jobs {
		if j.Status == status {
			out = append(out, j)
		}
	}
	sortByArrival(out)
	return out
}

// AllJobs returns every job ordered by arrival tick, then id.
func (s *State) AllJobs() []*domain.Job {
	out := make([]*domain.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	sortByArrival(out)
	return out
}

// Done reports whether every registered job is complete.
func (s *State) Done() bool {
	for _, j := range s.jobs {
		if j.Status != domain.JobComplete {
			return false
		}
	}
	return true
}

// qcReleased marks the jobs allowed through the quay crane sequencing gate: per QC,
// only jobs with fewer than lookahead unfinished predecessors. lookahead 0 admits all.
func (s *State) qcReleased(lookahead int) map[string]bool {
	out := map[string]bool{}
	for _, q := range s.qcQueues {
		open := 0
		for _, j := range q {
			if lookahead == 0 || open < lookahead {
				out[j.ID] = true
			}
			if j.Status != domain.JobComplete {
				open++
			}
		}
	}
	return out
}

func sortByArrival(jobs []*domain.Job) {
	slices.SortFunc(jobs, func(a, b *domain.Job) int {
		return cmp.Or(cmp.Compare(a.ArrivalTick, b.ArrivalTick), strings.Compare(a.ID, b.ID))
	})
}
