package services

import (
	"fmt"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/ports"
	"ht-planning-service/internal/topology"
	"math"
	"slices"
)

// Scores closer than this are treated as equal.
const scoreEpsilon = 1e-9

// YardSelector balances travel distance against how busy each yard already is.
type YardSelector struct {
	Router  ports.Router
	Topo    *topology.Topology
	Weights config.Weights
}

// YardChoice is the outcome of one yard selection.
type YardChoice struct {
	YardID string
	Score  float64
	Steps  int
}

// Select picks the candidate yard with the lowest blended score
//
//	score = steps(from -> yard) + fairness_weight * usage^fairness_exponent
//
// and counts the job against it in state immediately, so later selections in the
// same tick see the new load. Ties go to the lowest yard id.
func (ys *YardSelector) Select(job *domain.Job, from domain.Coordinate, state *State) (YardChoice, error) {
	candidates := ys.candidates(job)
	if len(candidates) == 0 {
		return YardChoice{}, fmt.Errorf("select yard: job %s: %w: no candidate yards", job.ID, domain.ErrConfiguration)
	}

	var best YardChoice
	found := false
	for _, id := range candidates {
		gate, ok := ys.Topo.Yard(id)
		if !ok {
			return YardChoice{}, fmt.Errorf("select yard: job %s: %w: unknown yard %q", job.ID, domain.ErrConfiguration, id)
		}
		steps, err := ys.Router.Cost(domain.BufferToYard, from, gate.In)
		if err != nil {
			return YardChoice{}, fmt.Errorf("select yard: job %s: distance to %s: %w", job.ID, id, err)
		}

		score := float64(steps) + ys.Weights.Fairness*fairness(state.Usage(id), ys.Weights.FairnessExponent)
		// Candidates are visited in id order, so only a strictly lower score replaces the best.
		if !found || score < best.Score-scoreEpsilon {
			best = YardChoice{YardID: id, Score: score, Steps: steps}
			found = true
		}
	}

	state.addUsage(best.YardID, 1)
	return best, nil
}

// candidates returns the job's yard choices, deduplicated and sorted; all yards when unrestricted.
func (ys *YardSelector) candidates(job *domain.Job) []string {
	if len(job.CandidateYards) == 0 {
		return ys.Topo.YardIDs()
	}
	out := slices.Clone(job.CandidateYards)
	slices.Sort(out)
	return slices.Compact(out)
}

func fairness(usage int, exponent float64) float64 {
	if usage <= 0 {
		return 0
	}
	return math.Pow(float64(usage), exponent)
}

// yardAnchor is the buffer slot yard distances are measured from: in front of the
// job's quay crane, or mid-buffer for jobs that never visit one.
func yardAnchor(topo *topology.Topology, job *domain.Job) domain.Coordinate {
	if c, ok := topo.BufferAnchor(job.QC); ok {
		return c
	}
	return domain.Coordinate{X: (topo.MinX + topo.MaxX) / 2, Y: topo.BufferRow}
}
