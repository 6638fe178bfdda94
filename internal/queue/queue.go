// Package queue runs jobs from an unbounded FIFO on a fixed set of workers.
package queue

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"tubeshift/internal/model"
	"tubeshift/internal/pipeline"
	"tubeshift/internal/progress"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("queue closed")

// JobRunner executes one job. *pipeline.Service implements it.
type JobRunner interface {
	RunJob(ctx context.Context, job model.Job) (pipeline.Result, error)
}

// Pool is a fixed-size worker pool over a FIFO of jobs. A failing job never
// affects the other workers.
type Pool struct {
	runner   JobRunner
	reporter progress.Reporter
	workers  int

	ctx    context.Context
	cancel context.CancelFunc
	g      *errgroup.Group

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []model.Job
	running map[string]context.CancelFunc
	closed  bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithReporter receives the queued and cancelled events the pool emits
// itself. Running jobs report through their own runner.
func WithReporter(r progress.Reporter) Option {
	return func(p *Pool) {
		p.reporter = r
	}
}

// New starts workers goroutines pulling from the queue until ctx is
// cancelled or the pool is closed and drained.
func New(ctx context.Context, runner JobRunner, workers int, opts ...Option) *Pool {
	if workers < 1 {
		workers = 1
	}
	c, cancel := context.WithCancel(ctx)
	p := &Pool{
		runner:   runner,
		reporter: progress.Nop{},
		workers:  workers,
		ctx:      c,
		cancel:   cancel,
		running:  make(map[string]context.CancelFunc),
	}
	for _, o := range opts {
		o(p)
	}
	p.cond = sync.NewCond(&p.mu)
	context.AfterFunc(c, func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})

	p.g = &errgroup.Group{}
	for i := 0; i < workers; i++ {
		p.g.Go(p.work)
	}
	return p
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }

// Submit appends job to the queue. The queued event is reported before a
// worker can see the job, so it never trails the job's own events.
func (p *Pool) Submit(job model.Job) error {
	if !p.accepting() {
		return ErrClosed
	}
	p.reporter.Update(progress.Update{
		JobID: job.ID, Stage: model.StatusQueued, Percent: -1,
		Message: "Queued", Title: job.Title, URL: job.URL,
	})

	p.mu.Lock()
	if p.closed || p.ctx.Err() != nil {
		p.mu.Unlock()
		p.reportCancelled(job)
		return ErrClosed
	}
	p.queue = append(p.queue, job)
	p.cond.Signal()
	p.mu.Unlock()
	return nil
}

func (p *Pool) accepting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed && p.ctx.Err() == nil
}

// Cancel stops the job with id. A queued job is removed and reported
// cancelled; a running job has its context cancelled and reports through
// its runner. It returns false when no such job is pending or running.
func (p *Pool) Cancel(id string) bool {
	p.mu.Lock()
	if stop, ok := p.running[id]; ok {
		p.mu.Unlock()
		stop()
		return true
	}
	for i, j := range p.queue {
		if j.ID == id {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			p.mu.Unlock()
			p.reportCancelled(j)
			return true
		}
	}
	p.mu.Unlock()
	return false
}

// CancelAll cancels every queued and running job and stops the workers.
func (p *Pool) CancelAll() {
	p.cancel()
}

// Close stops accepting jobs; queued jobs still run.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Wait blocks until every worker has exited. Jobs still queued when the
// pool was cancelled are reported cancelled.
func (p *Pool) Wait() error {
	err := p.g.Wait()
	p.mu.Lock()
	left := p.queue
	p.queue = nil
	p.mu.Unlock()
	for _, j := range left {
		p.reportCancelled(j)
	}
	p.cancel()
	return err
}

// Pending returns the number of queued jobs.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Running returns the number of jobs currently executing.
func (p *Pool) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.running)
}

func (p *Pool) work() error {
	for {
		job, jobCtx, ok := p.next()
		if !ok {
			return nil
		}
		// Failures are reported by the runner and must not stop this worker.
		_, _ = p.runner.RunJob(jobCtx, job)

		p.mu.Lock()
		if stop, ok := p.running[job.ID]; ok {
			stop()
			delete(p.running, job.ID)
		}
		p.mu.Unlock()
	}
}

func (p *Pool) next() (model.Job, context.Context, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed && p.ctx.Err() == nil {
		p.cond.Wait()
	}
	if p.ctx.Err() != nil || len(p.queue) == 0 {
		return model.Job{}, nil, false
	}
	job := p.queue[0]
	p.queue = p.queue[1:]
	jobCtx, stop := context.WithCancel(p.ctx)
	p.running[job.ID] = stop
	return job, jobCtx, true
}

func (p *Pool) reportCancelled(j model.Job) {
	p.reporter.Update(progress.Update{
		JobID: j.ID, Stage: model.StatusCancelled, Percent: -1, Message: "Cancelled", URL: j.URL,
	})
	p.reporter.Result(progress.Result{
		JobID: j.ID, URL: j.URL, Title: j.Title, Status: model.StatusCancelled, Err: context.Canceled,
	})
}
