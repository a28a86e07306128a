// Package operation is an in-process stand-in for the Operation Engine. It replays
// planned legs with fixed drive and work times and reports their completion; it does
// not model sector occupancy or collisions.
package operation

import (
	"cmp"
	"container/heap"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/domain"
	"slices"
	"strings"
)

type eventKind int

const (
	legDone eventKind = iota
	truckFreed
)

type scheduled struct {
	at   int64
	seq  int
	kind eventKind
	leg  domain.LegCompleted
	free domain.TruckFreed
}

type eventQueue []scheduled

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)   { *q = append(*q, x.(scheduled)) }
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Executor implements ports.OperationEngine.
type Executor struct {
	sim      config.Simulation
	queue    eventQueue
	seq      int
	inFlight int
}

func NewExecutor(sim config.Simulation) *Executor {
	return &Executor{sim: sim}
}

// Duration of a leg: driving its path plus the work done at its destination.
func (e *Executor) Duration(a domain.Assignment) int64 {
	d := int64(a.Path.Steps() * e.sim.DriveTicksPerStep)
	switch a.Leg.To() {
	case domain.StopQC:
		d += int64(e.sim.QCWorkTicks)
	case domain.StopYard:
		d += int64(e.sim.YardWorkTicks)
	}
	return max(d, 1)
}

func (e *Executor) Dispatch(batch domain.Batch) {
	assignments := slices.Clone(batch.Assignments)
	// Same-tick events are reported in dispatch order; make that independent of batch order.
	sortAssignments(assignments)

	for _, a := range assignments {
		at := batch.Tick + e.Duration(a)
		e.push(scheduled{at: at, kind: legDone, leg: domain.LegCompleted{JobID: a.JobID, LegIndex: a.LegIndex, Tick: at}})
		if a.Final {
			e.push(scheduled{at: at, kind: truckFreed, free: domain.TruckFreed{TruckID: a.TruckID, At: a.Path.End(), Tick: at}})
		}
		e.inFlight++
	}
}

func (e *Executor) push(s scheduled) {
	s.seq = e.seq
	e.seq++
	heap.Push(&e.queue, s)
}

func (e *Executor) Advance(tick int64) domain.TickEvents {
	var ev domain.TickEvents
	for e.queue.Len() > 0 && e.queue[0].at <= tick {
		s := heap.Pop(&e.queue).(scheduled)
		switch s.kind {
		case legDone:
			ev.Completed = append(ev.Completed, s.leg)
			e.inFlight--
		case truckFreed:
			ev.Freed = append(ev.Freed, s.free)
		}
	}
	return ev
}

func (e *Executor) InFlight() int { return e.inFlight }

func sortAssignments(as []domain.Assignment) {
	slices.SortFunc(as, func(a, b domain.Assignment) int {
		return cmp.Or(strings.Compare(a.JobID, b.JobID), cmp.Compare(a.LegIndex, b.LegIndex))
	})
}
