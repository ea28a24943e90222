package worker

import "context"

// Job is one unit of independent work. The context comes from the caller
// that built the pool and bounds every job the same way.
type Job[T any] func(ctx context.Context) (T, error)

// Result carries a job's output or its failure, keyed by job id.
type Result[T any] struct {
	JobID  string
	Output T
	Err    error
}

// Pool fans independent jobs out over a fixed set of workers and funnels
// the results into one channel.
type Pool[T any] struct {
	ctx     context.Context
	jobs    chan task[T]
	results chan Result[T]
}

type task[T any] struct {
	id  string
	run Job[T]
}

func NewPool[T any](ctx context.Context, workerCount, bufferSize int) *Pool[T] {
	p := &Pool[T]{
		ctx:     ctx,
		jobs:    make(chan task[T], bufferSize),
		results: make(chan Result[T], bufferSize),
	}

	for i := 0; i < workerCount; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool[T]) worker() {
	for t := range p.jobs {
		output, err := t.run(p.ctx)
		p.results <- Result[T]{JobID: t.id, Output: output, Err: err}
	}
}

func (p *Pool[T]) Submit(id string, run Job[T]) {
	p.jobs <- task[T]{id: id, run: run}
}

func (p *Pool[T]) Results() <-chan Result[T] {
	return p.results
}

// Close stops the workers once queued jobs have drained.
func (p *Pool[T]) Close() {
	close(p.jobs)
}
