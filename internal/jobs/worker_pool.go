package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/crewdesk/crewdesk-api/internal/redact"
)

// WorkerPool runs a fixed number of goroutines that execute jobs from a queue.
type WorkerPool struct {
	queue        QueueReader
	workerCount  int
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	logger       *slog.Logger
	errorHandler func(job Job, err error)
	startOnce    sync.Once
	stopOnce     sync.Once
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount is the number of worker goroutines. Values below 1 mean 1.
	WorkerCount int
}

// NewWorkerPool creates a worker pool reading from queue.
func NewWorkerPool(queue QueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "worker_pool")

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		workerCount = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		queue:       queue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler sets a function called with every failed job. It must be
// called before Start.
func (p *WorkerPool) SetErrorHandler(handler func(job Job, err error)) {
	p.errorHandler = handler
}

// Start launches the workers. Calling it again has no effect.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop cancels the running jobs' context and waits for every worker to exit.
// Jobs still queued are not executed.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	jobs := p.queue.Jobs()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if p.ctx.Err() != nil {
				return
			}
			p.process(job, id)
		}
	}
}

func (p *WorkerPool) process(job Job, workerID int) {
	logger := p.logger.With(
		"job_id", job.ID(),
		"job_type", job.Type(),
		"worker_id", workerID,
	)

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		return job.Execute(p.ctx)
	}()

	if err != nil {
		logger.Error("job execution failed", "error", redact.Error(err))
		if p.errorHandler != nil {
			p.errorHandler(job, err)
		}
		return
	}

	logger.Debug("job completed")
}
