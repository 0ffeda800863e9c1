package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/platform/logger"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// PostgresEmployeeStore implements store.EmployeeStore for one owner.
type PostgresEmployeeStore struct {
	db      store.DBTX
	ownerID uuid.UUID
	logger  *slog.Logger
}

// NewPostgresEmployeeStore creates an employee store bound to ownerID.
func NewPostgresEmployeeStore(db store.DBTX, ownerID uuid.UUID, logger *slog.Logger) *PostgresEmployeeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEmployeeStore{
		db:      db,
		ownerID: ownerID,
		logger:  logger.With(slog.String("component", "employee_store")),
	}
}

var _ store.EmployeeStore = (*PostgresEmployeeStore)(nil)

const employeeColumns = `id, owner_id, name, position, telegram, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var e domain.Employee
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Position, &e.Telegram, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// List implements store.EmployeeStore.List
func (s *PostgresEmployeeStore) List(ctx context.Context) ([]domain.Employee, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE owner_id = $1
		ORDER BY created_at DESC`,
		s.ownerID,
	)
	if err != nil {
		log.Error("failed to list employees", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	employees := []domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return employees, nil
}

// Get implements store.EmployeeStore.Get
func (s *PostgresEmployeeStore) Get(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	e, err := scanEmployee(s.db.QueryRowContext(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE id = $1 AND owner_id = $2`,
		id, s.ownerID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEmployeeNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get employee",
			slog.String("error", err.Error()),
			slog.String("employee_id", id.String()))
		return nil, MapError(err)
	}
	return e, nil
}

// Create implements store.EmployeeStore.Create
func (s *PostgresEmployeeStore) Create(ctx context.Context, employee *domain.Employee) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	employee.OwnerID = s.ownerID
	if err := employee.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		employee.ID, employee.OwnerID, employee.Name, employee.Position, employee.Telegram,
		employee.CreatedAt, employee.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create employee",
			slog.String("error", err.Error()),
			slog.String("employee_id", employee.ID.String()))
		return MapError(err)
	}

	log.Debug("employee created", slog.String("employee_id", employee.ID.String()))
	return nil
}

// Update implements store.EmployeeStore.Update
func (s *PostgresEmployeeStore) Update(ctx context.Context, employee *domain.Employee) error {
	if err := employee.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE employees
		SET name = $1, position = $2, telegram = $3, updated_at = $4
		WHERE id = $5 AND owner_id = $6`,
		employee.Name, employee.Position, employee.Telegram, employee.UpdatedAt,
		employee.ID, s.ownerID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update employee",
			slog.String("error", err.Error()),
			slog.String("employee_id", employee.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrEmployeeNotFound)
}

// Delete implements store.EmployeeStore.Delete
func (s *PostgresEmployeeStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM employees WHERE id = $1 AND owner_id = $2`,
		id, s.ownerID,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Debug("employee still referenced by tasks", slog.String("employee_id", id.String()))
			return fmt.Errorf("%w: employee %s", store.ErrReferenced, id)
		}
		log.Error("failed to delete employee",
			slog.String("error", err.Error()),
			slog.String("employee_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrEmployeeNotFound)
}

// CountTasks implements store.EmployeeStore.CountTasks
func (s *PostgresEmployeeStore) CountTasks(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE employee_id = $1 AND owner_id = $2`,
		id, s.ownerID,
	).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}
