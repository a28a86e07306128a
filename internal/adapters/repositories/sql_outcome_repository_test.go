package repositories

import (
	"context"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/platform/db"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live Postgres when TEST_DATABASE_URL is set.
func TestSQLOutcomeRepository(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(url)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, InitSchema(conn))

	repo := NewSQLOutcomeRepository(conn)
	ctx := context.Background()
	runID := uuid.NewString()

	outcomes := []domain.JobOutcome{
		{JobID: "J1", Kind: domain.Discharge, TruckID: "HT_01", YardID: "A1", StartTick: 0, EndTick: 120},
	}
	require.NoError(t, repo.SaveRun(ctx, sampleRun(runID), outcomes))

	run, err := repo.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "00000000deadbeef", run.Fingerprint)

	got, err := repo.ListOutcomes(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, outcomes, got)

	_, err = repo.GetRun(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}
