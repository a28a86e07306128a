package handlers

import (
	"ht-planning-service/internal/domain"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// RunRegistry tracks runs executing in this process so their status can be read
// before the final summary is stored.
type RunRegistry struct {
	active *xsync.Map[string, domain.RunSummary]
	wg     sync.WaitGroup
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{active: xsync.NewMap[string, domain.RunSummary]()}
}

// Start records run as active and executes fn in a new goroutine. The entry is
// removed when fn returns.
func (r *RunRegistry) Start(run domain.RunSummary, fn func()) {
	r.active.Store(run.RunID, run)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.active.Delete(run.RunID)
		fn()
	}()
}

func (r *RunRegistry) Get(runID string) (domain.RunSummary, bool) {
	return r.active.Load(runID)
}

func (r *RunRegistry) Active() int { return r.active.Size() }

// Wait blocks until every started run has returned.
func (r *RunRegistry) Wait() { r.wg.Wait() }
