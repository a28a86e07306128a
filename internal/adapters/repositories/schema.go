package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the run and outcome tables. The statements are valid for
// both SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRunsQuery := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		jobs INTEGER NOT NULL,
		completed INTEGER NOT NULL,
		makespan_ticks BIGINT NOT NULL,
		fingerprint TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);
	`

	createOutcomesQuery := `
	CREATE TABLE IF NOT EXISTS job_outcomes (
		run_id TEXT NOT NULL,
		job_id TEXT NOT NULL,
		job_type TEXT NOT NULL,
		assigned_truck TEXT NOT NULL,
		assigned_yard TEXT NOT NULL,
		start_tick BIGINT NOT NULL,
		end_tick BIGINT NOT NULL,
		PRIMARY KEY (run_id, job_id)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_job_outcomes_run_end
	ON job_outcomes(run_id, end_tick);
	`

	statements := []string{
		createRunsQuery,
		createOutcomesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
