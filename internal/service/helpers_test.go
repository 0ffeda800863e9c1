package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/events"
	"github.com/crewdesk/crewdesk-api/internal/jobs"
	"github.com/crewdesk/crewdesk-api/internal/mocks"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingEmitter captures emitted events and optionally fails.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (e *recordingEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

func (e *recordingEmitter) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var types []string
	for _, ev := range e.events {
		types = append(types, ev.Type)
	}
	return types
}

// inlineQueue runs each job as soon as it is enqueued.
type inlineQueue struct{}

func (inlineQueue) Enqueue(job jobs.Job) error {
	return job.Execute(context.Background())
}

func addEmployee(t *testing.T, scopes *mocks.MemoryScopes, ownerID uuid.UUID, name string) *domain.Employee {
	t.Helper()
	employee, err := domain.NewEmployee(ownerID, name, "", "", testNow)
	require.NoError(t, err)
	scopes.AddEmployee(*employee)
	return employee
}

func ptr[T any](v T) *T {
	return &v
}
