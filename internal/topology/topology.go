// Package topology describes the static terminal grid: reference points for
// buffer, quay cranes and yards, and the one-way horizontal lanes trucks drive on.
package topology

import (
	"fmt"
	"ht-planning-service/internal/domain"
	"slices"
)

// Direction of travel permitted on a lane.
type Direction int

const (
	East Direction = 1
	West Direction = -1
)

func (d Direction) String() string {
	if d == West {
		return "west"
	}
	return "east"
}

// Horizontal one-way lane spanning columns MinX..MaxX on a single row.
type Lane struct {
	Row  int
	Dir  Direction
	MinX int
	MaxX int
}

// Covers reports whether column x lies on the lane.
func (l Lane) Covers(x int) bool { return x >= l.MinX && x <= l.MaxX }

// Quay crane or yard block. Trucks drive into In, the stop's work moves them to Out.
type Gate struct {
	ID  string
	In  domain.Coordinate
	Out domain.Coordinate
}

// Topology is immutable after Validate succeeds.
//
// The corridor (rows CorridorTop..CorridorBottom, columns MinX..MaxX) allows vertical
// moves at every column. Horizontal moves happen only on lanes. QC gates sit on the row
// above the corridor, yard gates on the row below it.
type Topology struct {
	Width          int
	Height         int
	MinX           int
	MaxX           int
	CorridorTop    int
	CorridorBottom int
	BufferRow      int
	Lanes          []Lane
	QCs            []Gate
	Yards          []Gate

	lanesByRow map[int]Lane
	qcByID     map[string]Gate
	yardByID   map[string]Gate
}

func (t *Topology) QCRow() int   { return t.CorridorTop - 1 }
func (t *Topology) YardRow() int { return t.CorridorBottom + 1 }

// QC looks up a quay crane gate by id.
func (t *Topology) QC(id string) (Gate, bool) {
	g, ok := t.qcByID[id]
	return g, ok
}

// Yard looks up a yard gate by id.
func (t *Topology) Yard(id string) (Gate, bool) {
	g, ok := t.yardByID[id]
	return g, ok
}

// YardIDs returns every yard id in ascending order.
func (t *Topology) YardIDs() []string {
	ids := make([]string, 0, len(t.Yards))
	for _, y := range t.Yards {
		ids = append(ids, y.ID)
	}
	slices.Sort(ids)
	return ids
}

// LaneAt returns the lane on row y, if any.
func (t *Topology) LaneAt(y int) (Lane, bool) {
	l, ok := t.lanesByRow[y]
	return l, ok
}

// IsBufferSlot reports whether c is a parking position on the buffer row.
func (t *Topology) IsBufferSlot(c domain.Coordinate) bool {
	return c.Y == t.BufferRow && c.X >= t.MinX && c.X <= t.MaxX
}

// BufferAnchor is the buffer slot in front of a quay crane. Yard scoring measures from here.
func (t *Topology) BufferAnchor(qc string) (domain.Coordinate, bool) {
	g, ok := t.qcByID[qc]
	if !ok {
		return domain.Coordinate{}, false
	}
	return domain.Coordinate{X: g.In.X, Y: t.BufferRow}, true
}

func (t *Topology) inCorridor(c domain.Coordinate) bool {
	return c.X >= t.MinX && c.X <= t.MaxX && c.Y >= t.CorridorTop && c.Y <= t.CorridorBottom
}

// CanMove reports whether a truck may step from a to b in one move.
func (t *Topology) CanMove(a, b domain.Coordinate) bool {
	if a.Manhattan(b) != 1 {
		return false
	}

	if a.Y == b.Y {
		// Horizontal: only along a lane, in its direction, within its columns.
		l, ok := t.lanesByRow[a.Y]
		if !ok || !t.inCorridor(a) || !t.inCorridor(b) {
			return false
		}
		return b.X-a.X == int(l.Dir) && l.Covers(a.X) && l.Covers(b.X)
	}

	switch {
	case t.inCorridor(a) && t.inCorridor(b):
		return true
	case a.Y == t.CorridorTop && b.Y == t.QCRow():
		return t.isGate(t.QCs, b, true)
	case a.Y == t.QCRow() && b.Y == t.CorridorTop:
		return t.isGate(t.QCs, a, false)
	case a.Y == t.CorridorBottom && b.Y == t.YardRow():
		return t.isGate(t.Yards, b, true)
	case a.Y == t.YardRow() && b.Y == t.CorridorBottom:
		return t.isGate(t.Yards, a, false)
	}
	return false
}

func (t *Topology) isGate(gates []Gate, c domain.Coordinate, in bool) bool {
	for _, g := range gates {
		if in && g.In == c {
			return true
		}
		if !in && g.Out == c {
			return true
		}
	}
	return false
}

// Neighbors returns the positions reachable from c in one move, in a fixed order.
func (t *Topology) Neighbors(c domain.Coordinate) []domain.Coordinate {
	cand := []domain.Coordinate{
		{X: c.X, Y: c.Y - 1},
		{X: c.X + 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X - 1, Y: c.Y},
	}
	out := cand[:0]
	for _, n := range cand {
		if t.CanMove(c, n) {
			out = append(out, n)
		}
	}
	return out
}

// Endpoints returns the start or end coordinates a leg may use for the given stop kind.
func (t *Topology) Endpoints(stop domain.StopKind, arriving bool) []domain.Coordinate {
	var out []domain.Coordinate
	switch stop {
	case domain.StopBuffer:
		for x := t.MinX; x <= t.MaxX; x++ {
			out = append(out, domain.Coordinate{X: x, Y: t.BufferRow})
		}
	case domain.StopQC:
		out = gatePoints(t.QCs, arriving)
	case domain.StopYard:
		out = gatePoints(t.Yards, arriving)
	}
	return out
}

// IsEndpoint reports whether c is a valid start (arriving=false) or end (arriving=true)
// point for a leg touching the given stop kind.
func (t *Topology) IsEndpoint(stop domain.StopKind, c domain.Coordinate, arriving bool) bool {
	switch stop {
	case domain.StopBuffer:
		return t.IsBufferSlot(c)
	case domain.StopQC:
		return t.isGate(t.QCs, c, arriving)
	case domain.StopYard:
		return t.isGate(t.Yards, c, arriving)
	}
	return false
}

func gatePoints(gates []Gate, in bool) []domain.Coordinate {
	out := make([]domain.Coordinate, 0, len(gates))
	for _, g := range gates {
		if in {
			out = append(out, g.In)
		} else {
			out = append(out, g.Out)
		}
	}
	return out
}

func (t *Topology) String() string {
	return fmt.Sprintf("topology %dx%d lanes=%d qcs=%d yards=%d", t.Width, t.Height, len(t.Lanes), len(t.QCs), len(t.Yards))
}
