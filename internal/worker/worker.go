package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrPoolFull = errors.New("worker pool queue is full")

type ProcessFunc[T any] func(ctx context.Context, job T) error

// Pool runs jobs of type T on a fixed number of goroutines fed from a
// buffered queue. Processing errors are logged and do not stop a worker.
type Pool[T any] struct {
	name       string
	numWorkers int
	jobs       chan T
	processor  ProcessFunc[T]
	wg         sync.WaitGroup
}

func NewPool[T any](name string, numWorkers int, bufferSize int, processor ProcessFunc[T]) *Pool[T] {
	return &Pool[T]{
		name:       name,
		numWorkers: numWorkers,
		jobs:       make(chan T, bufferSize),
		processor:  processor,
	}
}

func (p *Pool[T]) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool[T]) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.processor(ctx, job); err != nil {
				slog.Error("job failed", "pool", p.name, "worker", id, "error", err)
			}
		}
	}
}

// Submit blocks until the job is queued.
func (p *Pool[T]) Submit(job T) {
	p.jobs <- job
}

// SubmitContext blocks until the job is queued or ctx is done. Callers
// feeding the pool from a loop use it so shutdown never waits on a full
// queue whose workers have already exited.
func (p *Pool[T]) SubmitContext(ctx context.Context, job T) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit queues the job if there is room and reports ErrPoolFull
// otherwise. Request handlers use it so a backlog never blocks a client.
func (p *Pool[T]) TrySubmit(job T) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrPoolFull
	}
}

// Stop closes the queue and waits for workers to exit. No Submit may be
// called after Stop.
func (p *Pool[T]) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
