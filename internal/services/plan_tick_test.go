package services

import (
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/pathfinder"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlanner(t *testing.T, trucks []*domain.Truck, opts ...PlannerOption) (*Planner, *pathfinder.Pathfinder) {
	t.Helper()
	topo, pf := newTerminal(t)
	p, err := NewPlanner(pf, topo, config.DefaultWeights(), trucks, opts...)
	require.NoError(t, err)
	return p, pf
}

func TestPlannerJobLifecycle(t *testing.T) {
	truck := domain.NewTruck("HT_01", c(10, 6))
	p, pf := newPlanner(t, []*domain.Truck{truck})

	job := domain.NewJob("J1", domain.Discharge, "QC1", 0)
	job.YardOverride = "A1"
	require.NoError(t, p.Submit([]*domain.Job{job}))

	batch, err := p.Step(0, domain.TickEvents{})
	require.NoError(t, err)
	require.Len(t, batch.Assignments, 1)

	a := batch.Assignments[0]
	assert.Equal(t, "J1", a.JobID)
	assert.Equal(t, "HT_01", a.TruckID)
	assert.Equal(t, "A1", a.YardID)
	assert.Equal(t, domain.BufferToQC, a.Leg)
	assert.False(t, a.Final)
	assert.Equal(t, c(10, 6), a.Path.Start())
	assert.Equal(t, c(3, 3), a.Path.End())
	require.NoError(t, pathfinder.Check(pf.Topology(), a.Path))

	assert.Equal(t, domain.JobTruckAssigned, job.Status)
	assert.Equal(t, domain.TruckBusy, truck.Status)
	assert.Equal(t, 1, p.State().Usage("A1"))

	// Nothing to do while the leg is being driven.
	batch, err = p.Step(6, domain.TickEvents{})
	require.NoError(t, err)
	assert.Empty(t, batch.Assignments)

	// Each completed leg releases the next one to the same truck.
	wantLegs := []domain.LegType{domain.QCToBuffer, domain.BufferToYard, domain.YardToBuffer}
	tick := int64(12)
	for i, leg := range wantLegs {
		batch, err = p.Step(tick, domain.TickEvents{Completed: []domain.LegCompleted{{JobID: "J1", LegIndex: i, Tick: tick - 1}}})
		require.NoError(t, err)
		require.Len(t, batch.Assignments, 1)
		a = batch.Assignments[0]
		assert.Equal(t, leg, a.Leg)
		assert.Equal(t, i+1, a.LegIndex)
		assert.Equal(t, "HT_01", a.TruckID)
		assert.Equal(t, domain.JobInProgress, job.Status)
		tick += 6
	}
	assert.True(t, a.Final)
	assert.Equal(t, c(10, 6), a.Path.End())

	batch, err = p.Step(tick, domain.TickEvents{
		Completed: []domain.LegCompleted{{JobID: "J1", LegIndex: 3, Tick: tick - 2}},
		Freed:     []domain.TruckFreed{{TruckID: "HT_01", At: c(10, 6), Tick: tick - 2}},
	})
	require.NoError(t, err)
	assert.Empty(t, batch.Assignments)
	assert.Equal(t, domain.JobComplete, job.Status)
	assert.Equal(t, domain.TruckIdle, truck.Status)
	assert.Equal(t, 0, p.State().Usage("A1"))
	assert.True(t, p.Done())

	outcomes := p.Outcomes()
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.JobOutcome{
		JobID: "J1", Kind: domain.Discharge, TruckID: "HT_01", YardID: "A1", StartTick: 0, EndTick: tick - 2,
	}, outcomes[0])
}

func TestPlannerKeepsJobsPendingWithoutTrucks(t *testing.T) {
	p, _ := newPlanner(t, []*domain.Truck{domain.NewTruck("HT_01", c(10, 6))})
	require.NoError(t, p.Submit([]*domain.Job{qcTrip("J1", "QC2", 0), qcTrip("J2", "QC2", 0)}))

	batch, err := p.Step(0, domain.TickEvents{})
	require.NoError(t, err)
	require.Len(t, batch.Assignments, 1)
	assert.Equal(t, "J1", batch.Assignments[0].JobID)

	j2, _ := p.State().Job("J2")
	assert.Equal(t, domain.JobYardAssigned, j2.Status)
	assert.Empty(t, j2.TruckID)
}

func TestPlannerHonoursArrivalTicks(t *testing.T) {
	p, _ := newPlanner(t, topologyFleet(t, 4))
	require.NoError(t, p.Submit([]*domain.Job{qcTrip("J1", "QC2", 10)}))

	batch, err := p.Step(0, domain.TickEvents{})
	require.NoError(t, err)
	assert.Empty(t, batch.Assignments)
	assert.True(t, p.Waiting(0))

	batch, err = p.Step(12, domain.TickEvents{})
	require.NoError(t, err)
	assert.Len(t, batch.Assignments, 1)
	assert.False(t, p.Waiting(12))
}

func TestPlannerQCLookahead(t *testing.T) {
	p, _ := newPlanner(t, topologyFleet(t, 4), WithQCLookahead(1))

	jobs := []*domain.Job{qcTrip("J3", "QC1", 0), qcTrip("J1", "QC1", 0), qcTrip("J2", "QC1", 0)}
	for i, j := range jobs {
		j.QCSequence = 3 - i
	}
	require.NoError(t, p.Submit(jobs))

	batch, err := p.Step(0, domain.TickEvents{})
	require.NoError(t, err)
	require.Len(t, batch.Assignments, 1)
	// J2 carries the lowest sequence number.
	assert.Equal(t, "J2", batch.Assignments[0].JobID)
}

func TestPlannerArrivalEvents(t *testing.T) {
	p, _ := newPlanner(t, topologyFleet(t, 2))

	batch, err := p.Step(0, domain.TickEvents{Arrivals: []*domain.Job{qcTrip("J1", "QC4", 0)}})
	require.NoError(t, err)
	assert.Len(t, batch.Assignments, 1)

	_, err = p.Step(6, domain.TickEvents{Arrivals: []*domain.Job{qcTrip("J1", "QC4", 6)}})
	require.ErrorIs(t, err, domain.ErrInputValidation)
}

func TestPlannerRejectsBadInput(t *testing.T) {
	t.Run("duplicate trucks", func(t *testing.T) {
		topo, pf := newTerminal(t)
		trucks := []*domain.Truck{domain.NewTruck("HT_01", c(2, 6)), domain.NewTruck("HT_01", c(3, 6))}
		_, err := NewPlanner(pf, topo, config.DefaultWeights(), trucks)
		require.ErrorIs(t, err, domain.ErrInputValidation)
	})

	t.Run("truck off the buffer", func(t *testing.T) {
		topo, pf := newTerminal(t)
		_, err := NewPlanner(pf, topo, config.DefaultWeights(), []*domain.Truck{domain.NewTruck("HT_01", c(2, 7))})
		require.ErrorIs(t, err, domain.ErrInputValidation)
	})

	t.Run("negative weight", func(t *testing.T) {
		topo, pf := newTerminal(t)
		w := config.DefaultWeights()
		w.Downstream = -1
		_, err := NewPlanner(pf, topo, w, nil)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("duplicate jobs", func(t *testing.T) {
		p, _ := newPlanner(t, topologyFleet(t, 2))
		err := p.Submit([]*domain.Job{qcTrip("J1", "QC1", 0), qcTrip("J1", "QC2", 0)})
		require.ErrorIs(t, err, domain.ErrInputValidation)
		_, ok := p.State().Job("J1")
		assert.False(t, ok, "a rejected submission registers nothing")
	})

	t.Run("unknown references", func(t *testing.T) {
		p, _ := newPlanner(t, topologyFleet(t, 2))
		bad := qcTrip("J1", "QC9", 0)
		require.ErrorIs(t, p.Submit([]*domain.Job{bad}), domain.ErrInputValidation)

		bad = domain.NewJob("J2", domain.Load, "QC1", 0)
		bad.CandidateYards = []string{"Z9"}
		require.ErrorIs(t, p.Submit([]*domain.Job{bad}), domain.ErrInputValidation)
	})

	t.Run("events", func(t *testing.T) {
		p, _ := newPlanner(t, topologyFleet(t, 2))
		_, err := p.Step(0, domain.TickEvents{Completed: []domain.LegCompleted{{JobID: "nope"}}})
		require.ErrorIs(t, err, domain.ErrUnknownJob)

		_, err = p.Step(6, domain.TickEvents{Freed: []domain.TruckFreed{{TruckID: "HT_A", At: c(2, 6)}}})
		require.ErrorIs(t, err, domain.ErrInputValidation, "idle truck cannot be freed")

		_, err = p.Step(6, domain.TickEvents{})
		require.ErrorIs(t, err, domain.ErrInputValidation, "tick must advance")
	})

	t.Run("truck freed mid job", func(t *testing.T) {
		p, _ := newPlanner(t, topologyFleet(t, 1))
		require.NoError(t, p.Submit([]*domain.Job{qcTrip("J1", "QC1", 0)}))
		_, err := p.Step(0, domain.TickEvents{})
		require.NoError(t, err)

		_, err = p.Step(6, domain.TickEvents{Freed: []domain.TruckFreed{{TruckID: "HT_A", At: c(2, 6)}}})
		require.ErrorIs(t, err, domain.ErrInputValidation)
	})
}

func topologyFleet(t *testing.T, n int) []*domain.Truck {
	t.Helper()
	topo, _ := newTerminal(t)
	out := make([]*domain.Truck, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.NewTruck("HT_"+string(rune('A'+i)), c(topo.MinX+1+i, topo.BufferRow)))
	}
	return out
}
