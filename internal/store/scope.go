package store

import (
	"context"

	"github.com/google/uuid"
)

// Scope bundles the stores of one owner. Every read and write made through
// it is restricted to that owner's records.
type Scope interface {
	OwnerID() uuid.UUID
	Employees() EmployeeStore
	Tasks() TaskStore
	Config() ConfigStore
}

// ScopeFn runs inside a transaction with a Scope bound to it.
type ScopeFn func(ctx context.Context, scope Scope) error

// Scopes hands out owner-bound Scopes.
type Scopes interface {
	// ForOwner returns a Scope for ownerID outside any transaction.
	ForOwner(ownerID uuid.UUID) Scope

	// RunInTx calls fn with a Scope whose stores share one transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, ownerID uuid.UUID, fn ScopeFn) error
}
