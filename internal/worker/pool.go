package worker

import (
	"context"
	"sync"

	"github.com/baharkarakas/user-directory/internal/metrics"
)

type task func()

// Pool runs CPU-bound work (password hashing) on a fixed set of goroutines
// so it cannot starve request handling.
type Pool struct {
	wg       sync.WaitGroup
	jobs     chan task
	stopOnce sync.Once
}

func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
				job()
			}
		}()
	}
	return p
}

// Submit queues f without waiting for it. Must not be called after Stop.
func (p *Pool) Submit(f task) {
	p.jobs <- f
	metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
}

// Do runs f on a worker and waits until it returns. If ctx ends first, Do
// returns ctx.Err(); f may still run later, so callers must not read what f
// writes unless Do returned nil.
func (p *Pool) Do(ctx context.Context, f func()) error {
	done := make(chan struct{})
	select {
	case p.jobs <- func() { defer close(done); f() }:
		metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}
