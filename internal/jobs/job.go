// Package jobs runs short background jobs on a fixed pool of worker
// goroutines fed by a bounded in-memory queue. Jobs are not persisted: a job
// that does not fit in the queue is rejected, and jobs still queued at
// shutdown are dropped.
package jobs

import (
	"context"

	"github.com/google/uuid"
)

// Job is a unit of background work.
type Job interface {
	ID() uuid.UUID
	Type() string
	Execute(ctx context.Context) error
}

// QueueReader gives workers read access to queued jobs.
type QueueReader interface {
	Jobs() <-chan Job
}

// QueueWriter accepts jobs for processing.
type QueueWriter interface {
	// Enqueue adds a job without blocking. It returns ErrQueueFull when the
	// buffer is full and ErrQueueClosed after Close.
	Enqueue(job Job) error
}
