package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/store"
)

// Scopes implements store.Scopes on a PostgreSQL connection pool.
type Scopes struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewScopes creates a Scopes backed by db.
func NewScopes(db *sql.DB, logger *slog.Logger) *Scopes {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scopes{db: db, logger: logger}
}

var _ store.Scopes = (*Scopes)(nil)

// ForOwner implements store.Scopes.ForOwner
func (s *Scopes) ForOwner(ownerID uuid.UUID) store.Scope {
	return newScope(s.db, ownerID, s.logger)
}

// RunInTx implements store.Scopes.RunInTx
func (s *Scopes) RunInTx(ctx context.Context, ownerID uuid.UUID, fn store.ScopeFn) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, newScope(tx, ownerID, s.logger))
	})
}

type scope struct {
	ownerID   uuid.UUID
	employees *PostgresEmployeeStore
	tasks     *PostgresTaskStore
	config    *PostgresConfigStore
}

func newScope(db store.DBTX, ownerID uuid.UUID, logger *slog.Logger) *scope {
	return &scope{
		ownerID:   ownerID,
		employees: NewPostgresEmployeeStore(db, ownerID, logger),
		tasks:     NewPostgresTaskStore(db, ownerID, logger),
		config:    NewPostgresConfigStore(db, ownerID, logger),
	}
}

func (s *scope) OwnerID() uuid.UUID             { return s.ownerID }
func (s *scope) Employees() store.EmployeeStore { return s.employees }
func (s *scope) Tasks() store.TaskStore         { return s.tasks }
func (s *scope) Config() store.ConfigStore      { return s.config }
