package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/domain"
)

// EmployeeStore persists the employees of a single owner.
type EmployeeStore interface {
	// List returns the owner's employees, newest first.
	List(ctx context.Context) ([]domain.Employee, error)

	// Get returns one employee. Returns ErrEmployeeNotFound if it does not
	// exist or belongs to another owner.
	Get(ctx context.Context, id uuid.UUID) (*domain.Employee, error)

	// Create inserts the employee. Its OwnerID is set to the scope owner.
	Create(ctx context.Context, employee *domain.Employee) error

	// Update writes name, position and telegram.
	// Returns ErrEmployeeNotFound if no row of this owner matches.
	Update(ctx context.Context, employee *domain.Employee) error

	// Delete removes the employee. Returns ErrEmployeeNotFound if no row of
	// this owner matches and ErrReferenced if tasks still point at it.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountTasks returns how many of the owner's tasks are assigned to the employee.
	CountTasks(ctx context.Context, id uuid.UUID) (int, error)
}
