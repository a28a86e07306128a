package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/platform/obs"
)

// SQLite-backed implementation of the OutcomeRepository port.
type SqliteOutcomeRepository struct{ DB *sql.DB }

func NewSqliteOutcomeRepository(db *sql.DB) *SqliteOutcomeRepository {
	return &SqliteOutcomeRepository{DB: db}
}

// Store a run summary and replace its outcomes in one transaction.
func (s *SqliteOutcomeRepository) SaveRun(
	ctx context.Context,
	run domain.RunSummary,
	outcomes []domain.JobOutcome,
) (err error) {
	defer obs.Time(ctx, "outcomes.sqlite.SaveRun")(&err)

	if s.DB == nil {
		return errors.New("sqlite outcome repository: DB is nil")
	}
	if run.RunID == "" {
		return errors.New("save run: run id must not be empty")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (run_id, status, started_at, jobs, completed, makespan_ticks, fingerprint, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (run_id) DO UPDATE
	SET status = excluded.status,
		started_at = excluded.started_at,
		jobs = excluded.jobs,
		completed = excluded.completed,
		makespan_ticks = excluded.makespan_ticks,
		fingerprint = excluded.fingerprint,
		error = excluded.error;
	`, run.RunID, string(run.Status), formatTime(run.StartedAt), run.Jobs, run.Completed, run.Makespan, run.Fingerprint, run.Error)
	if err != nil {
		return fmt.Errorf("save run %s: upsert runs: %w", run.RunID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM job_outcomes WHERE run_id = ?;`, run.RunID); err != nil {
		return fmt.Errorf("save run %s: clear outcomes: %w", run.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO job_outcomes (run_id, job_id, job_type, assigned_truck, assigned_yard, start_tick, end_tick)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("save run %s: prepare insert: %w", run.RunID, err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		if _, err := stmt.ExecContext(ctx, run.RunID, o.JobID, string(o.Kind), o.TruckID, o.YardID, o.StartTick, o.EndTick); err != nil {
			return fmt.Errorf("save run %s: insert job_id=%s: %w", run.RunID, o.JobID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run %s: commit tx: %w", run.RunID, err)
	}
	return nil
}

func (s *SqliteOutcomeRepository) GetRun(ctx context.Context, runID string) (domain.RunSummary, error) {
	if s.DB == nil {
		return domain.RunSummary{}, errors.New("sqlite outcome repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT run_id, status, started_at, jobs, completed, makespan_ticks, fingerprint, error
	FROM runs
	WHERE run_id = ?;
	`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RunSummary{}, fmt.Errorf("get run %s: %w", runID, domain.ErrRunNotFound)
	}
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return run, nil
}

// Return the outcomes of a run ordered by completion tick, then job id.
func (s *SqliteOutcomeRepository) ListOutcomes(ctx context.Context, runID string) ([]domain.JobOutcome, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT job_id, job_type, assigned_truck, assigned_yard, start_tick, end_tick
	FROM job_outcomes
	WHERE run_id = ?
	ORDER BY end_tick, job_id;
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: query job_outcomes table: %w", err)
	}
	defer rows.Close()

	out, err := scanOutcomes(rows)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	return out, nil
}
