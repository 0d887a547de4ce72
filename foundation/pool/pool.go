// Package pool is a fixed-size worker pool. Heavy numeric work (prosody
// aggregation, facial reduction) runs on these workers so the job
// goroutines stay free for I/O bound stages.
package pool

import (
	"context"
	"sync"
)

type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}

	p := &Pool{
		tasks: make(chan func()),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}

	return p
}

// Run submits fn and waits for it to finish. Submission honors ctx so a
// cancelled job releases its claim on a worker slot; once a worker
// picked the task up it runs to completion (cancellation is checked at
// stage boundaries, not mid-computation).
func (p *Pool) Run(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)

	select {
	case p.tasks <- func() { done <- fn() }:
	case <-ctx.Done():
		return ctx.Err()
	}

	return <-done
}

// Shutdown stops accepting work and waits for in-flight tasks.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}
