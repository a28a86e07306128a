package services

import (
	"errors"
	"fmt"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/ports"
	"ht-planning-service/internal/topology"
	"math"
	"slices"
	"strings"
)

// TruckSelector pairs yard-assigned jobs with idle trucks.
type TruckSelector struct {
	Router  ports.Router
	Topo    *topology.Topology
	Weights config.Weights
}

// Pairing is one greedy selection result.
type Pairing struct {
	Job   *domain.Job
	Truck *domain.Truck
	Cost  float64
}

// Select assigns trucks to jobs greedily. Jobs are taken by arrival tick then id; each
// takes the cheapest remaining truck, where
//
//	cost = immediate_weight * steps(truck -> first stop)
//	     + downstream_weight * steps(remaining legs, returning to the truck's slot)
//	     + recent_penalty(truck) + spread_penalty(truck, trucks picked earlier this tick)
//
// Ties go to the lowest truck id. Jobs left without a truck are simply not paired.
func (ts *TruckSelector) Select(jobs []*domain.Job, idle []*domain.Truck, tick int64) ([]Pairing, error) {
	ordered := slices.Clone(jobs)
	sortByArrival(ordered)

	pool := slices.Clone(idle)
	slices.SortFunc(pool, func(a, b *domain.Truck) int { return strings.Compare(a.ID, b.ID) })

	pairings := make([]Pairing, 0, min(len(ordered), len(pool)))
	var picked []*domain.Truck

	for _, job := range ordered {
		if len(pool) == 0 {
			break
		}

		bestIdx := -1
		bestCost := math.Inf(1)
		for i, truck := range pool {
			cost, err := ts.Cost(job, truck, picked, tick)
			if err != nil {
				return nil, fmt.Errorf("select truck: job %s truck %s: %w", job.ID, truck.ID, err)
			}
			if bestIdx < 0 || cost < bestCost-scoreEpsilon {
				bestIdx, bestCost = i, cost
			}
		}

		truck := pool[bestIdx]
		pairings = append(pairings, Pairing{Job: job, Truck: truck, Cost: bestCost})
		picked = append(picked, truck)
		pool = slices.Delete(pool, bestIdx, bestIdx+1)
	}

	return pairings, nil
}

// Cost evaluates one (job, truck) pairing given the trucks already picked this tick.
func (ts *TruckSelector) Cost(job *domain.Job, truck *domain.Truck, picked []*domain.Truck, tick int64) (float64, error) {
	if len(job.Legs) == 0 {
		return 0, errors.New("job has no legs")
	}
	home := truck.Pos

	var immediate, downstream int
	for i, leg := range job.Legs {
		start, end, err := legEndpoints(ts.Topo, job, leg, home)
		if err != nil {
			return 0, err
		}
		steps, err := ts.Router.Cost(leg, start, end)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			immediate = steps
		} else {
			downstream += steps
		}
	}

	w := ts.Weights
	cost := w.Immediate*float64(immediate) + w.Downstream*float64(downstream)
	cost += recentPenalty(w, truck.RecentTicks(), tick)
	cost += spreadPenalty(w, truck, picked)
	return cost, nil
}

// recentPenalty sums a linearly decaying penalty over the truck's remembered assignments.
func recentPenalty(w config.Weights, history []int64, tick int64) float64 {
	if w.RecencyWindow <= 0 || w.RecentPenalty == 0 {
		return 0
	}
	window := float64(w.RecencyWindow)
	var p float64
	for _, at := range history {
		age := float64(tick - at)
		if age < 0 || age >= window {
			continue
		}
		p += w.RecentPenalty * (window - age) / window
	}
	return p
}

// spreadPenalty penalises trucks parked close to trucks already chosen this tick.
func spreadPenalty(w config.Weights, truck *domain.Truck, picked []*domain.Truck) float64 {
	if w.SpreadRadius <= 0 || w.SpreadPenalty == 0 {
		return 0
	}
	radius := float64(w.SpreadRadius)
	var p float64
	for _, other := range picked {
		d := float64(truck.Pos.Manhattan(other.Pos))
		if d < radius {
			p += w.SpreadPenalty * (radius - d) / radius
		}
	}
	return p
}

// legEndpoints resolves where a leg of job starts and ends when served by a truck parked at home.
func legEndpoints(topo *topology.Topology, job *domain.Job, leg domain.LegType, home domain.Coordinate) (domain.Coordinate, domain.Coordinate, error) {
	start, err := stopPoint(topo, job, leg.From(), home, false)
	if err != nil {
		return domain.Coordinate{}, domain.Coordinate{}, err
	}
	end, err := stopPoint(topo, job, leg.To(), home, true)
	if err != nil {
		return domain.Coordinate{}, domain.Coordinate{}, err
	}
	return start, end, nil
}

func stopPoint(topo *topology.Topology, job *domain.Job, stop domain.StopKind, home domain.Coordinate, arriving bool) (domain.Coordinate, error) {
	var (
		gate topology.Gate
		ok   bool
	)
	switch stop {
	case domain.StopBuffer:
		return home, nil
	case domain.StopQC:
		gate, ok = topo.QC(job.QC)
	case domain.StopYard:
		gate, ok = topo.Yard(job.YardID)
	}
	if !ok {
		return domain.Coordinate{}, fmt.Errorf("%w: job %s has no %s in the topology", domain.ErrUnreachableDestination, job.ID, stop)
	}
	if arriving {
		return gate.In, nil
	}
	return gate.Out, nil
}
