package repositories

import (
	"database/sql"
	"fmt"
	"ht-planning-service/internal/domain"
	"time"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (domain.RunSummary, error) {
	var (
		r         domain.RunSummary
		status    string
		startedAt string
	)
	if err := row.Scan(&r.RunID, &status, &startedAt, &r.Jobs, &r.Completed, &r.Makespan, &r.Fingerprint, &r.Error); err != nil {
		return domain.RunSummary{}, err
	}
	r.Status = domain.RunStatus(status)

	t, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	r.StartedAt = t
	return r, nil
}

func scanOutcomes(rows *sql.Rows) ([]domain.JobOutcome, error) {
	out := make([]domain.JobOutcome, 0, 64)
	for rows.Next() {
		var (
			o    domain.JobOutcome
			kind string
		)
		if err := rows.Scan(&o.JobID, &kind, &o.TruckID, &o.YardID, &o.StartTick, &o.EndTick); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		o.Kind = domain.JobKind(kind)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return out, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
