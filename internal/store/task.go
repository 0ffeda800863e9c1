package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/domain"
)

// TaskFilter narrows a task listing. Nil fields do not filter.
type TaskFilter struct {
	Status     *domain.Status
	Priority   *domain.Priority
	EmployeeID *uuid.UUID
}

// TaskStore persists the tasks of a single owner. Tasks returned by List and
// Get carry their assignee in Employee.
type TaskStore interface {
	// List returns the owner's tasks matching filter, newest first.
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)

	// Get returns one task. Returns ErrTaskNotFound if it does not exist or
	// belongs to another owner.
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetForUpdate is Get with the task row locked until the surrounding
	// transaction ends. The assignee is not loaded.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Create inserts the task. Its OwnerID is set to the scope owner.
	Create(ctx context.Context, task *domain.Task) error

	// Update writes every mutable column, including the full history.
	// Returns ErrTaskNotFound if no row of this owner matches.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task. Returns ErrTaskNotFound if no row of this owner matches.
	Delete(ctx context.Context, id uuid.UUID) error

	// Stats counts the owner's tasks by status; overdue is judged against now.
	Stats(ctx context.Context, now time.Time) (domain.TaskStats, error)
}
