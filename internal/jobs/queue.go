package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the Queue
var (
	ErrQueueClosed = errors.New("job queue is closed")
	ErrQueueFull   = errors.New("job queue is full")
)

// Queue is a buffered job queue implementing QueueReader and QueueWriter.
type Queue struct {
	jobs   chan Job
	mu     sync.RWMutex
	closed bool
	logger *slog.Logger
}

var (
	_ QueueReader = (*Queue)(nil)
	_ QueueWriter = (*Queue)(nil)
)

// NewQueue creates a queue holding at most size jobs.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		jobs:   make(chan Job, size),
		logger: logger.With("component", "job_queue"),
	}
}

// Enqueue implements QueueWriter.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("job enqueued",
			"job_id", job.ID(),
			"job_type", job.Type(),
			"queue_len", len(q.jobs),
			"queue_cap", cap(q.jobs))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// Close stops the queue from accepting jobs. It is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("job queue closed", "dropped_jobs", len(q.jobs))
	}
}

// Len returns the number of jobs waiting.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Jobs implements QueueReader.
func (q *Queue) Jobs() <-chan Job {
	return q.jobs
}
