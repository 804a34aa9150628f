package jobs

import (
	"context"
	"errors"
	"sync"

	"github.com/edusloth/edusloth-backend/internal/logger"
)

// ErrQueueFull means the job backlog hit its cap; callers should surface this
// as a retry-later condition rather than block the request.
var ErrQueueFull = errors.New("job queue is full")

var ErrPoolClosed = errors.New("job pool is shut down")

// Job is one unit of background work. The context is the pool's run context;
// it is cancelled on shutdown.
type Job struct {
	Name string
	Run  func(ctx context.Context)
}

// Pool is a fixed-size worker pool over a bounded queue. Submission never
// blocks: a full queue rejects the job so the caller can answer immediately.
type Pool struct {
	log     *logger.Logger
	queue   chan Job
	workers int

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewPool(baseLog *logger.Logger, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}
	return &Pool{
		log:     baseLog.With("component", "JobPool"),
		queue:   make(chan Job, queueSize),
		workers: workers,
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.log.Info("starting job pool", "workers", p.workers, "queue_size", cap(p.queue))
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	workerLog := p.log.With("worker", id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			p.runJob(ctx, workerLog, job)
		}
	}
}

// runJob isolates one job so a panic marks the job, not the worker, as dead.
func (p *Pool) runJob(ctx context.Context, workerLog *logger.Logger, job Job) {
	defer func() {
		if r := recover(); r != nil {
			workerLog.Error("job panicked", "job", job.Name, "panic", r)
		}
	}()
	workerLog.Debug("job started", "job", job.Name)
	job.Run(ctx)
	workerLog.Debug("job finished", "job", job.Name)
}

func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for in-flight work to drain.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
	p.log.Info("job pool stopped")
}
