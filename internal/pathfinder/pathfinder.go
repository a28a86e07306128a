// Package pathfinder computes lane-legal truck paths between terminal reference points.
//
// Each leg type owns a small precomputed lane graph: the set of zero-, one- and two-lane
// routes it may use. A request binds every route to the concrete endpoints and keeps the
// shortest legal one, so the choice of lane follows from where the end lies relative to
// the start instead of from a fixed detour.
package pathfinder

import (
	"errors"
	"fmt"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/topology"
)

type Pathfinder struct {
	topo   *topology.Topology
	routes map[domain.LegType][]laneRoute
}

// Option customises a Pathfinder.
type Option func(*settings)

type settings struct {
	laneRows map[domain.LegType][]int
}

// WithLaneRows restricts a leg type to the lanes on the given rows.
func WithLaneRows(leg domain.LegType, rows ...int) Option {
	return func(s *settings) { s.laneRows[leg] = rows }
}

// New builds the per-leg lane graphs for a validated topology and verifies that
// every start point of each leg type can reach every end point.
func New(topo *topology.Topology, opts ...Option) (*Pathfinder, error) {
	if topo == nil {
		return nil, errors.New("new pathfinder: topology is nil")
	}
	s := settings{laneRows: map[domain.LegType][]int{}}
	for _, o := range opts {
		o(&s)
	}

	p := &Pathfinder{topo: topo, routes: make(map[domain.LegType][]laneRoute, len(domain.AllLegTypes))}
	for _, leg := range domain.AllLegTypes {
		lanes := topo.Lanes
		if rows, ok := s.laneRows[leg]; ok {
			lanes = lanes[:0:0]
			for _, row := range rows {
				l, found := topo.LaneAt(row)
				if !found {
					return nil, fmt.Errorf("new pathfinder: %w: %s restricted to row %d which has no lane",
						domain.ErrConfiguration, leg, row)
				}
				lanes = append(lanes, l)
			}
		}
		p.routes[leg] = buildLaneGraph(lanes)
	}

	if err := p.verifyCoverage(); err != nil {
		return nil, fmt.Errorf("new pathfinder: %w", err)
	}
	return p, nil
}

func (p *Pathfinder) verifyCoverage() error {
	for _, leg := range domain.AllLegTypes {
		for _, s := range p.topo.Endpoints(leg.From(), false) {
			for _, e := range p.topo.Endpoints(leg.To(), true) {
				if _, ok := p.choose(leg, s, e); !ok {
					return fmt.Errorf("%w: %s has no lane route from %v to %v", domain.ErrConfiguration, leg, s, e)
				}
			}
		}
	}
	return nil
}

// Topology returns the grid the pathfinder routes on.
func (p *Pathfinder) Topology() *topology.Topology { return p.topo }

// Cost returns the step count of the path Path would produce, without building it.
func (p *Pathfinder) Cost(leg domain.LegType, start, end domain.Coordinate) (int, error) {
	plan, err := p.plan(leg, start, end)
	if err != nil {
		return 0, err
	}
	return plan.steps, nil
}

// Path returns the shortest lane-legal path for leg from start to end.
// The result depends only on its arguments and the topology.
func (p *Pathfinder) Path(leg domain.LegType, start, end domain.Coordinate) (domain.Path, error) {
	plan, err := p.plan(leg, start, end)
	if err != nil {
		return nil, err
	}

	path := make(domain.Path, 1, plan.steps+1)
	path[0] = start
	switch len(plan.lanes) {
	case 0:
		path = walk(path, end)
	case 1:
		row := plan.lanes[0].Row
		path = walk(path, domain.Coordinate{X: start.X, Y: row})
		path = walk(path, domain.Coordinate{X: end.X, Y: row})
		path = walk(path, end)
	default:
		a, b := plan.lanes[0].Row, plan.lanes[1].Row
		path = walk(path, domain.Coordinate{X: start.X, Y: a})
		path = walk(path, domain.Coordinate{X: plan.turn, Y: a})
		path = walk(path, domain.Coordinate{X: plan.turn, Y: b})
		path = walk(path, domain.Coordinate{X: end.X, Y: b})
		path = walk(path, end)
	}

	if err := Check(p.topo, path); err != nil {
		return nil, fmt.Errorf("path %s %v->%v: %w", leg, start, end, err)
	}
	return path, nil
}

func (p *Pathfinder) plan(leg domain.LegType, start, end domain.Coordinate) (routePlan, error) {
	if _, ok := p.routes[leg]; !ok {
		return routePlan{}, fmt.Errorf("%w: unknown leg type %d", domain.ErrInputValidation, int(leg))
	}
	if !p.topo.IsEndpoint(leg.From(), start, false) {
		return routePlan{}, fmt.Errorf("%w: %s start %v is not a %s exit point",
			domain.ErrUnreachableDestination, leg, start, leg.From())
	}
	if !p.topo.IsEndpoint(leg.To(), end, true) {
		return routePlan{}, fmt.Errorf("%w: %s end %v is not a %s entry point",
			domain.ErrUnreachableDestination, leg, end, leg.To())
	}
	plan, ok := p.choose(leg, start, end)
	if !ok {
		return routePlan{}, fmt.Errorf("%w: %s has no lane route from %v to %v",
			domain.ErrUnreachableDestination, leg, start, end)
	}
	return plan, nil
}

func (p *Pathfinder) choose(leg domain.LegType, start, end domain.Coordinate) (routePlan, bool) {
	var best routePlan
	found := false
	for _, r := range p.routes[leg] {
		plan, ok := r.bind(start, end)
		if !ok {
			continue
		}
		if !found || better(plan, best, start.Y) {
			best = plan
			found = true
		}
	}
	return best, found
}

// walk appends unit steps from the last point of path to to along a single axis.
func walk(path domain.Path, to domain.Coordinate) domain.Path {
	cur := path[len(path)-1]
	for cur != to {
		switch {
		case cur.X < to.X:
			cur.X++
		case cur.X > to.X:
			cur.X--
		case cur.Y < to.Y:
			cur.Y++
		default:
			cur.Y--
		}
		path = append(path, cur)
	}
	return path
}

// Check verifies that every step of path is a single legal move on topo.
func Check(topo *topology.Topology, path domain.Path) error {
	if len(path) == 0 {
		return errors.New("check path: empty path")
	}
	for i := 1; i < len(path); i++ {
		if !topo.CanMove(path[i-1], path[i]) {
			return fmt.Errorf("check path: illegal step %d from %v to %v", i, path[i-1], path[i])
		}
	}
	return nil
}
