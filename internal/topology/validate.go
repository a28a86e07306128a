package topology

import (
	"errors"
	"fmt"
	"ht-planning-service/internal/domain"
)

// Validate checks the layout and that every leg type can connect every pair of its
// reference points. It must succeed before the topology is handed to a pathfinder.
func (t *Topology) Validate() error {
	if err := t.validateShape(); err != nil {
		return fmt.Errorf("validate topology: %w: %w", domain.ErrConfiguration, err)
	}
	t.index()
	if err := t.validateConnectivity(); err != nil {
		return fmt.Errorf("validate topology: %w: %w", domain.ErrConfiguration, err)
	}
	return nil
}

func (t *Topology) validateShape() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if t.Width <= 0 || t.Height <= 0 {
		add("grid size %dx%d must be positive", t.Width, t.Height)
	}
	if t.MinX < 0 || t.MaxX >= t.Width || t.MinX > t.MaxX {
		add("corridor columns %d..%d outside grid width %d", t.MinX, t.MaxX, t.Width)
	}
	if t.CorridorTop < 1 || t.CorridorBottom > t.Height-2 || t.CorridorTop > t.CorridorBottom {
		add("corridor rows %d..%d leave no room for gate rows in height %d", t.CorridorTop, t.CorridorBottom, t.Height)
	}
	if t.BufferRow < t.CorridorTop || t.BufferRow > t.CorridorBottom {
		add("buffer row %d outside corridor", t.BufferRow)
	}

	rows := map[int]bool{}
	for _, l := range t.Lanes {
		switch {
		case l.Row < t.CorridorTop || l.Row > t.CorridorBottom:
			add("lane row %d outside corridor", l.Row)
		case l.Row == t.BufferRow:
			add("lane row %d overlaps the buffer row", l.Row)
		case l.Dir != East && l.Dir != West:
			add("lane row %d has invalid direction %d", l.Row, l.Dir)
		case l.MinX > l.MaxX || l.MinX < t.MinX || l.MaxX > t.MaxX:
			add("lane row %d columns %d..%d outside corridor", l.Row, l.MinX, l.MaxX)
		case rows[l.Row]:
			add("duplicate lane on row %d", l.Row)
		}
		rows[l.Row] = true
	}
	if len(t.Lanes) == 0 {
		add("no lanes defined")
	}

	errs = append(errs, t.validateGates("qc", t.QCs, t.QCRow())...)
	errs = append(errs, t.validateGates("yard", t.Yards, t.YardRow())...)
	if len(t.Yards) == 0 {
		add("no yards defined")
	}

	return errors.Join(errs...)
}

func (t *Topology) validateGates(kind string, gates []Gate, row int) []error {
	var errs []error
	seen := map[string]bool{}
	for _, g := range gates {
		if g.ID == "" {
			errs = append(errs, fmt.Errorf("%s gate with empty id", kind))
			continue
		}
		if seen[g.ID] {
			errs = append(errs, fmt.Errorf("duplicate %s id %q", kind, g.ID))
		}
		seen[g.ID] = true
		for _, c := range []domain.Coordinate{g.In, g.Out} {
			if c.Y != row || c.X < t.MinX || c.X > t.MaxX {
				errs = append(errs, fmt.Errorf("%s %s point %v not on row %d within corridor columns", kind, g.ID, c, row))
			}
		}
		if g.In == g.Out {
			errs = append(errs, fmt.Errorf("%s %s entry and exit coincide at %v", kind, g.ID, g.In))
		}
	}
	return errs
}

func (t *Topology) index() {
	t.lanesByRow = make(map[int]Lane, len(t.Lanes))
	for _, l := range t.Lanes {
		t.lanesByRow[l.Row] = l
	}
	t.qcByID = make(map[string]Gate, len(t.QCs))
	for _, g := range t.QCs {
		t.qcByID[g.ID] = g
	}
	t.yardByID = make(map[string]Gate, len(t.Yards))
	for _, g := range t.Yards {
		t.yardByID[g.ID] = g
	}
}

func (t *Topology) validateConnectivity() error {
	var errs []error

	check := func(leg domain.LegType) {
		starts := t.Endpoints(leg.From(), false)
		ends := t.Endpoints(leg.To(), true)
		for _, s := range starts {
			seen := t.reachable(s)
			for _, e := range ends {
				if !seen[e] {
					errs = append(errs, fmt.Errorf("%s: %v cannot reach %v", leg, s, e))
				}
			}
		}
	}
	for _, leg := range domain.AllLegTypes {
		check(leg)
	}

	return errors.Join(errs...)
}

// reachable runs a breadth-first search over the move graph from start.
func (t *Topology) reachable(start domain.Coordinate) map[domain.Coordinate]bool {
	seen := map[domain.Coordinate]bool{start: true}
	queue := []domain.Coordinate{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range t.Neighbors(cur) {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return seen
}
