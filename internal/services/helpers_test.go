package services

import (
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/pathfinder"
	"ht-planning-service/internal/topology"
	"testing"

	"github.com/stretchr/testify/require"
)

func c(x, y int) domain.Coordinate { return domain.Coordinate{X: x, Y: y} }

func newTerminal(t *testing.T) (*topology.Topology, *pathfinder.Pathfinder) {
	t.Helper()
	topo := topology.DefaultTerminal()
	require.NoError(t, topo.Validate())
	pf, err := pathfinder.New(topo)
	require.NoError(t, err)
	return topo, pf
}

// quietWeights disables every penalty so costs are plain step counts.
func quietWeights() config.Weights {
	return config.Weights{
		Immediate:        1,
		FairnessExponent: 1,
	}
}

// qcTrip is a job that drives to a quay crane and back.
func qcTrip(id, qc string, arrival int64) *domain.Job {
	return &domain.Job{
		ID:          id,
		Kind:        domain.Custom,
		QC:          qc,
		ArrivalTick: arrival,
		Legs:        []domain.LegType{domain.BufferToQC, domain.QCToBuffer},
	}
}
