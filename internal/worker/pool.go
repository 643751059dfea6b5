// worker/pool.go
package worker

import (
	"context"
	"sync"
)

type Job[T any] func(ctx context.Context) T

type Result[T any] struct {
	JobID  string
	Output T
}

// Pool runs submitted jobs on a fixed number of goroutines. Results are
// delivered in completion order and the channel closes after Close.
type Pool[T any] struct {
	ctx     context.Context
	jobs    chan jobWrapper[T]
	results chan Result[T]
	wg      sync.WaitGroup
	once    sync.Once
}

type jobWrapper[T any] struct {
	id string
	fn Job[T]
}

func NewPool[T any](ctx context.Context, workerCount int, bufferSize int) *Pool[T] {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool[T]{
		ctx:     ctx,
		jobs:    make(chan jobWrapper[T], bufferSize),
		results: make(chan Result[T], bufferSize),
	}

	p.wg.Add(workerCount)
	for range workerCount {
		go p.worker()
	}

	return p
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		output := job.fn(p.ctx)
		p.results <- Result[T]{
			JobID:  job.id,
			Output: output,
		}
	}
}

// Submit queues a job. It blocks while the queue is full and must not be
// called after Close.
func (p *Pool[T]) Submit(id string, fn Job[T]) {
	p.jobs <- jobWrapper[T]{id: id, fn: fn}
}

func (p *Pool[T]) Results() <-chan Result[T] {
	return p.results
}

// Close stops accepting jobs; Results closes once queued jobs finish.
func (p *Pool[T]) Close() {
	p.once.Do(func() {
		close(p.jobs)
		go func() {
			p.wg.Wait()
			close(p.results)
		}()
	})
}
