package crawler

import (
	"context"
	"sync"
)

// WorkerFn processes one raw listing card.
type WorkerFn func(ctx context.Context, raw RawListing)

// Orchestrator fans raw listings out to a bounded pool of workers with
// cancellation support.
type Orchestrator struct {
	workerCount int
}

func NewOrchestrator(workerCount int) *Orchestrator {
	if workerCount <= 0 {
		workerCount = 5
	}
	return &Orchestrator{workerCount: workerCount}
}

// Run processes the provided cards with bounded concurrency. It returns when
// every card is processed or the context is canceled.
func (o *Orchestrator) Run(ctx context.Context, raws []RawListing, fn WorkerFn) {
	jobs := make(chan RawListing)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for raw := range jobs {
			select {
			case <-ctx.Done():
				return
			default:
			}
			fn(ctx, raw)
		}
	}

	for i := 0; i < o.workerCount; i++ {
		wg.Add(1)
		go worker()
	}

	for _, raw := range raws {
		select {
		case jobs <- raw:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}
