package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/platform/obs"
)

// SQLOutcomeRepository stores runs in Postgres through the pgx stdlib driver.
type SQLOutcomeRepository struct {
	DB *sql.DB
}

func NewSQLOutcomeRepository(db *sql.DB) *SQLOutcomeRepository {
	return &SQLOutcomeRepository{DB: db}
}

func (s *SQLOutcomeRepository) SaveRun(
	ctx context.Context,
	run domain.RunSummary,
	outcomes []domain.JobOutcome,
) (err error) {
	defer obs.Time(ctx, "outcomes.sql.SaveRun")(&err)

	if s.DB == nil {
		return errors.New("outcome repository: db is nil")
	}
	if run.RunID == "" {
		return errors.New("save run: run id must not be empty")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (run_id, status, started_at, jobs, completed, makespan_ticks, fingerprint, error)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (run_id) DO UPDATE
	SET status = EXCLUDED.status,
		started_at = EXCLUDED.started_at,
		jobs = EXCLUDED.jobs,
		completed = EXCLUDED.completed,
		makespan_ticks = EXCLUDED.makespan_ticks,
		fingerprint = EXCLUDED.fingerprint,
		error = EXCLUDED.error;
	`, run.RunID, string(run.Status), formatTime(run.StartedAt), run.Jobs, run.Completed, run.Makespan, run.Fingerprint, run.Error)
	if err != nil {
		return fmt.Errorf("save run %s: upsert runs: %w", run.RunID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM job_outcomes WHERE run_id = $1;`, run.RunID); err != nil {
		return fmt.Errorf("save run %s: clear outcomes: %w", run.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO job_outcomes (run_id, job_id, job_type, assigned_truck, assigned_yard, start_tick, end_tick)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`)
	if err != nil {
		return fmt.Errorf("save run %s: db prepare: %w", run.RunID, err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		if _, err := stmt.ExecContext(ctx, run.RunID, o.JobID, string(o.Kind), o.TruckID, o.YardID, o.StartTick, o.EndTick); err != nil {
			return fmt.Errorf("save run %s: insert job_id=%q: %w", run.RunID, o.JobID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run %s: commit: %w", run.RunID, err)
	}
	return nil
}

func (s *SQLOutcomeRepository) GetRun(ctx context.Context, runID string) (_ domain.RunSummary, err error) {
	defer obs.Time(ctx, "outcomes.sql.GetRun")(&err)

	if s.DB == nil {
		return domain.RunSummary{}, errors.New("outcome repository: db is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT run_id, status, started_at, jobs, completed, makespan_ticks, fingerprint, error
	FROM runs
	WHERE run_id = $1;
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

func (s *SQLOutcomeRepository) ListOutcomes(ctx context.Context, runID string) ([]domain.JobOutcome, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT job_id, job_type, assigned_truck, assigned_yard, start_tick, end_tick
	FROM job_outcomes
	WHERE run_id = $1
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
