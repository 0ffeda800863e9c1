package jobs

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

type funcJob struct {
	id uuid.UUID
	fn func(ctx context.Context) error
}

func newFuncJob(fn func(ctx context.Context) error) *funcJob {
	return &funcJob{id: uuid.New(), fn: fn}
}

func (j *funcJob) ID() uuid.UUID { return j.id }
func (j *funcJob) Type() string  { return "test" }

func (j *funcJob) Execute(ctx context.Context) error {
	if j.fn == nil {
		return nil
	}
	return j.fn(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
