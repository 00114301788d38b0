package worker

import (
	"sync"

	"go.uber.org/zap"
)

// Pool runs submitted jobs on a fixed set of goroutines fed by a bounded queue.
type Pool struct {
	workers int
	jobs    chan func()
	logger  *zap.Logger

	mu      sync.RWMutex
	closed  bool
	started sync.Once
	wg      sync.WaitGroup
}

// NewPool sizes a pool. Non-positive values fall back to one worker and a queue of 64.
func NewPool(workers, queueSize int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan func(), queueSize),
		logger:  logger,
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (p *Pool) Start() {
	p.started.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.loop(i)
		}
		p.logger.Info("worker pool started", zap.Int("workers", p.workers), zap.Int("queue", cap(p.jobs)))
	})
}

func (p *Pool) loop(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.runJob(id, job)
	}
}

func (p *Pool) runJob(id int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker job panicked", zap.Int("worker", id), zap.Any("panic", r))
		}
	}()
	job()
}

// Submit enqueues job without blocking. It returns false when the queue is full or the pool is stopped.
func (p *Pool) Submit(job func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Stop stops accepting jobs and waits for the queued ones to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.Start()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}
