package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobValidate(t *testing.T) {
	tests := []struct {
		name    string
		job     *Job
		wantErr bool
	}{
		{name: "discharge", job: NewJob("J1", Discharge, "QC1", 0)},
		{name: "load", job: NewJob("J2", Load, "QC2", 4)},
		{name: "empty id", job: NewJob(" ", Discharge, "QC1", 0), wantErr: true},
		{name: "negative arrival", job: NewJob("J3", Load, "QC1", -1), wantErr: true},
		{name: "missing qc", job: NewJob("J4", Discharge, "", 0), wantErr: true},
		{
			name:    "starts away from buffer",
			job:     &Job{ID: "J5", Kind: Custom, QC: "QC1", Legs: []LegType{QCToBuffer}},
			wantErr: true,
		},
		{
			name:    "broken chain",
			job:     &Job{ID: "J6", Kind: Custom, QC: "QC1", Legs: []LegType{BufferToQC, YardToBuffer}},
			wantErr: true,
		},
		{
			name: "yard round trip",
			job:  &Job{ID: "J7", Kind: Custom, Legs: []LegType{BufferToYard, YardToBuffer}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInputValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestJobLifecycle(t *testing.T) {
	job := NewJob("J1", Discharge, "QC1", 0)
	job.YardID = "A1"
	job.Status = JobYardAssigned

	require.NoError(t, job.Bind("HT_01", Coordinate{X: 2, Y: 6}, 6))
	assert.Equal(t, JobTruckAssigned, job.Status)
	assert.True(t, job.NeedsDispatch())
	assert.Equal(t, BufferToQC, job.NextLeg())

	job.Dispatched++
	assert.False(t, job.NeedsDispatch())

	_, err := job.CompleteLeg(1, 10)
	require.ErrorIs(t, err, ErrInputValidation, "leg 1 was never dispatched")

	done, err := job.CompleteLeg(0, 10)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, JobInProgress, job.Status)
	assert.Equal(t, QCToBuffer, job.NextLeg())

	for i := 1; i < len(job.Legs); i++ {
		job.Dispatched++
		done, err = job.CompleteLeg(i, int64(20+i))
		require.NoError(t, err)
	}
	assert.True(t, done)
	assert.Equal(t, JobComplete, job.Status)
	assert.Equal(t, int64(23), job.EndTick)
	assert.False(t, job.NeedsDispatch())
}

func TestParseJobKind(t *testing.T) {
	k, err := ParseJobKind(" di ")
	require.NoError(t, err)
	assert.Equal(t, Discharge, k)

	_, err = ParseJobKind("XX")
	assert.ErrorIs(t, err, ErrInputValidation)
}
