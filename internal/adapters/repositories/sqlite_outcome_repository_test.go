package repositories

import (
	"context"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/platform/db"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *SqliteOutcomeRepository {
	t.Helper()

	conn, err := db.OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(conn))
	// Schema creation is idempotent.
	require.NoError(t, InitSchema(conn))
	return NewSqliteOutcomeRepository(conn)
}

func sampleRun(id string) domain.RunSummary {
	return domain.RunSummary{
		RunID:       id,
		Status:      domain.RunComplete,
		StartedAt:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Jobs:        2,
		Completed:   2,
		Makespan:    150,
		Fingerprint: "00000000deadbeef",
	}
}

func TestSqliteOutcomeRepositoryRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	outcomes := []domain.JobOutcome{
		{JobID: "J2", Kind: domain.Load, TruckID: "HT_02", YardID: "B2", StartTick: 6, EndTick: 150},
		{JobID: "J1", Kind: domain.Discharge, TruckID: "HT_01", YardID: "A1", StartTick: 0, EndTick: 120},
	}
	require.NoError(t, repo.SaveRun(ctx, sampleRun("r1"), outcomes))

	run, err := repo.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, sampleRun("r1"), run)

	got, err := repo.ListOutcomes(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "J1", got[0].JobID)
	assert.Equal(t, outcomes[0], got[1])
}

func TestSqliteOutcomeRepositoryOverwrite(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	running := sampleRun("r1")
	running.Status = domain.RunRunning
	running.Completed = 0
	require.NoError(t, repo.SaveRun(ctx, running, nil))

	final := sampleRun("r1")
	final.Completed = 1
	require.NoError(t, repo.SaveRun(ctx, final, []domain.JobOutcome{
		{JobID: "J1", Kind: domain.Discharge, TruckID: "HT_01", YardID: "A1", EndTick: 120},
	}))

	run, err := repo.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunComplete, run.Status)
	assert.Equal(t, 1, run.Completed)

	got, err := repo.ListOutcomes(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSqliteOutcomeRepositoryNotFound(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	_, err = repo.ListOutcomes(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestSqliteOutcomeRepositoryRejects(t *testing.T) {
	var nilRepo SqliteOutcomeRepository
	assert.Error(t, nilRepo.SaveRun(context.Background(), sampleRun("r1"), nil))

	repo := newRepo(t)
	assert.Error(t, repo.SaveRun(context.Background(), sampleRun(""), nil))
}

func TestOpenStorage(t *testing.T) {
	path := t.TempDir() + "/nested/runs.db"
	conn, repo, err := Open(config.Storage{Driver: "sqlite", SqlitePath: path})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, repo.SaveRun(context.Background(), sampleRun("r1"), nil))

	_, _, err = Open(config.Storage{Driver: "mysql"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, _, err = Open(config.Storage{Driver: "postgres"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
