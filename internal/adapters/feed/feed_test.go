package feed

import (
	"context"
	"ht-planning-service/internal/domain"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `JOB_ID,JOB_TYPE,CONTAINER_NO,QC_M,QC_JOB_SEQ,YARD_BLOCK,ALT_YARD_BLOCK_1,ALT_YARD_BLOCK_2,ALT_YARD_BLOCK_3
J001,DI,MSCU0000001,QC1,QC1_0001,A1,B1,,
J002,LO,MSCU0000002,QC2,QC2_0001,C2,,,
J003,di,MSCU0000003,QC1,QC1_0002,,,,
`

func TestParseCSV(t *testing.T) {
	jobs, err := ParseCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	j := jobs[0]
	assert.Equal(t, "J001", j.ID)
	assert.Equal(t, domain.Discharge, j.Kind)
	assert.Equal(t, "MSCU0000001", j.ContainerNo)
	assert.Equal(t, "QC1", j.QC)
	assert.Equal(t, 1, j.QCSequence)
	assert.Equal(t, []string{"A1", "B1"}, j.CandidateYards)
	assert.Equal(t, domain.Discharge.Legs(), j.Legs)
	assert.Equal(t, domain.JobPending, j.Status)

	assert.Equal(t, domain.Load, jobs[1].Kind)
	assert.Equal(t, []string{"C2"}, jobs[1].CandidateYards)

	assert.Equal(t, domain.Discharge, jobs[2].Kind)
	assert.Equal(t, 2, jobs[2].QCSequence)
	assert.Empty(t, jobs[2].CandidateYards)
}

func TestParseCSVOptionalColumns(t *testing.T) {
	in := "job_id,job_type,qc_m,arrival_tick,yard_override,legs\n" +
		"J1,CUSTOM,,12,D1,buffer_to_yard;yard_to_buffer\n" +
		"J2,LO,QC3,0,,\n"

	jobs, err := ParseCSV(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, domain.Custom, jobs[0].Kind)
	assert.Equal(t, int64(12), jobs[0].ArrivalTick)
	assert.Equal(t, "D1", jobs[0].YardOverride)
	assert.Equal(t, []domain.LegType{domain.BufferToYard, domain.YardToBuffer}, jobs[0].Legs)
	assert.Equal(t, domain.Load.Legs(), jobs[1].Legs)
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "missing column", in: "JOB_ID,QC_M\nJ1,QC1\n"},
		{name: "unknown type", in: "JOB_ID,JOB_TYPE,QC_M\nJ1,XX,QC1\n"},
		{name: "missing qc", in: "JOB_ID,JOB_TYPE,QC_M\nJ1,DI,\n"},
		{name: "bad sequence", in: "JOB_ID,JOB_TYPE,QC_M,QC_JOB_SEQ\nJ1,DI,QC1,QC1_x\n"},
		{name: "bad arrival", in: "JOB_ID,JOB_TYPE,QC_M,ARRIVAL_TICK\nJ1,DI,QC1,-3\n"},
		{name: "custom without legs", in: "JOB_ID,JOB_TYPE,QC_M\nJ1,CUSTOM,QC1\n"},
		{name: "bad leg", in: "JOB_ID,JOB_TYPE,QC_M,LEGS\nJ1,CUSTOM,QC1,buffer_to_moon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(context.Background(), strings.NewReader(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInputValidation)
		})
	}
}

func TestParseQCSequence(t *testing.T) {
	n, err := ParseQCSequence("QC8_0042")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = ParseQCSequence("7")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = ParseQCSequence("QC1_")
	assert.ErrorIs(t, err, domain.ErrInputValidation)
}

func TestCSVJobFeedLoadJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	jobs, err := NewCSVJobFeed(path).LoadJobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, jobs, 3)

	_, err = NewCSVJobFeed(filepath.Join(t.TempDir(), "missing.csv")).LoadJobs(context.Background())
	assert.Error(t, err)
}

func TestCSVJobFeedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseCSV(ctx, strings.NewReader(sampleCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONJobFeed(t *testing.T) {
	body := `[
		{"job_id": "J1", "job_type": "DI", "qc": "QC4", "qc_sequence": 3, "candidate_yards": ["E1", "E2"]},
		{"job_id": "J2", "job_type": "CUSTOM", "legs": ["buffer_to_yard", "yard_to_buffer"], "yard_override": "A2", "arrival_tick": 6}
	]`
	path := filepath.Join(t.TempDir(), "jobs.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	jobs, err := NewJSONJobFeed(path).LoadJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "QC4", jobs[0].QC)
	assert.Equal(t, 3, jobs[0].QCSequence)
	assert.Equal(t, []string{"E1", "E2"}, jobs[0].CandidateYards)
	assert.Equal(t, domain.Discharge.Legs(), jobs[0].Legs)

	assert.Equal(t, "A2", jobs[1].YardOverride)
	assert.Equal(t, int64(6), jobs[1].ArrivalTick)
	assert.Equal(t, []domain.LegType{domain.BufferToYard, domain.YardToBuffer}, jobs[1].Legs)
}

func TestParseJSONErrors(t *testing.T) {
	_, err := ParseJSON(strings.NewReader(`{"job_id": "J1"}`))
	assert.ErrorIs(t, err, domain.ErrInputValidation)

	_, err = ParseJSON(strings.NewReader(`[{"job_id": "J1", "job_type": "LO"}]`))
	assert.ErrorIs(t, err, domain.ErrInputValidation)
	assert.Contains(t, err.Error(), "index 0")
}
