package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlannerCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPlanner(reg)

	m.ObserveTick(2*time.Millisecond, 3)
	m.ObserveTick(time.Millisecond, 0)
	m.IncAssignment("buffer_to_qc")
	m.IncAssignment("buffer_to_qc")
	m.IncCompleted()
	m.SetPendingJobs(4)
	m.SetYardUsage("B2", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.assignments.WithLabelValues("buffer_to_qc")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completed))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.pending))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.yardUsage.WithLabelValues("B2")))

	n, err := testutil.GatherAndCount(reg, "ht_planner_tick_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRegisterDefaultIsIdempotent(t *testing.T) {
	a := RegisterDefault()
	b := RegisterDefault()
	assert.Same(t, a, b)
}
