package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	RunIDKey     ctxKey = "run_id"
)

// WithRunID tags ctx so timings logged below it carry the run id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// Time logs the duration of an operation when the returned func runs, including
// the error it ended with, if any.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)
	runID, _ := ctx.Value(RunIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s run_id=%s op=%s dur=%dms err=%v", reqID, runID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s run_id=%s op=%s dur=%dms", reqID, runID, name, dur.Milliseconds())
	}
}
