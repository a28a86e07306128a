package pathfinder

import (
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/topology"
)

// A precomputed way of crossing the grid: straight up/down, one lane, or two lanes
// joined by a vertical transfer.
type laneRoute struct {
	lanes []topology.Lane
}

// A laneRoute bound to concrete endpoints.
type routePlan struct {
	lanes []topology.Lane
	// Transfer column between the first and second lane.
	turn  int
	steps int
}

// buildLaneGraph enumerates every lane route usable by a leg, given its allowed lanes.
func buildLaneGraph(lanes []topology.Lane) []laneRoute {
	routes := []laneRoute{{}}
	for _, l := range lanes {
		routes = append(routes, laneRoute{lanes: []topology.Lane{l}})
	}
	for _, a := range lanes {
		for _, b := range lanes {
			if a.Row != b.Row {
				routes = append(routes, laneRoute{lanes: []topology.Lane{a, b}})
			}
		}
	}
	return routes
}

// bind fits the route to the given endpoints. ok is false when the lanes cannot
// carry a truck from s to e in their permitted directions.
func (r laneRoute) bind(s, e domain.Coordinate) (routePlan, bool) {
	dx := e.X - s.X
	switch len(r.lanes) {
	case 0:
		if dx != 0 {
			return routePlan{}, false
		}
		return routePlan{steps: absInt(e.Y - s.Y)}, true

	case 1:
		l := r.lanes[0]
		if dx == 0 || sign(dx) != int(l.Dir) || !l.Covers(s.X) || !l.Covers(e.X) {
			return routePlan{}, false
		}
		steps := absInt(s.Y-l.Row) + absInt(dx) + absInt(l.Row-e.Y)
		return routePlan{lanes: r.lanes, turn: e.X, steps: steps}, true

	default:
		a, b := r.lanes[0], r.lanes[1]
		if !a.Covers(s.X) || !b.Covers(e.X) {
			return routePlan{}, false
		}
		lo, hi := max(a.MinX, b.MinX), min(a.MaxX, b.MaxX)
		if a.Dir == topology.East {
			lo = max(lo, s.X)
		} else {
			hi = min(hi, s.X)
		}
		if b.Dir == topology.East {
			hi = min(hi, e.X)
		} else {
			lo = max(lo, e.X)
		}
		if lo > hi {
			return routePlan{}, false
		}
		turn := bestTurn(lo, hi, min(s.X, e.X), max(s.X, e.X))
		// Both lanes must actually be driven; otherwise the route degenerates to fewer lanes.
		if turn == s.X || turn == e.X {
			return routePlan{}, false
		}
		steps := absInt(s.Y-a.Row) + absInt(turn-s.X) + absInt(a.Row-b.Row) + absInt(e.X-turn) + absInt(b.Row-e.Y)
		return routePlan{lanes: r.lanes, turn: turn, steps: steps}, true
	}
}

// bestTurn picks the transfer column in [lo, hi] closest to the span [a, b],
// preferring the lowest column.
func bestTurn(lo, hi, a, b int) int {
	switch {
	case hi < a:
		return hi
	case lo > b:
		return lo
	default:
		return max(lo, a)
	}
}

// better orders bound routes: fewer steps, fewer lanes, then lanes closer to the
// start row, then lower lane rows.
func better(p, q routePlan, startRow int) bool {
	if p.steps != q.steps {
		return p.steps < q.steps
	}
	if len(p.lanes) != len(q.lanes) {
		return len(p.lanes) < len(q.lanes)
	}
	for i := range p.lanes {
		dp, dq := absInt(p.lanes[i].Row-startRow), absInt(q.lanes[i].Row-startRow)
		if dp != dq {
			return dp < dq
		}
		if p.lanes[i].Row != q.lanes[i].Row {
			return p.lanes[i].Row < q.lanes[i].Row
		}
	}
	return p.turn < q.turn
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
