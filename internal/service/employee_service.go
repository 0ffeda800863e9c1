package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/platform/logger"
	"github.com/crewdesk/crewdesk-api/internal/redact"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// EmployeeInput holds the fields of a new employee.
type EmployeeInput struct {
	Name     string
	Position string
	Telegram string
}

// EmployeeService manages the employees of the calling user.
type EmployeeService interface {
	// List returns the owner's employees, newest first.
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Employee, error)

	// Create adds an employee for the owner.
	Create(ctx context.Context, ownerID uuid.UUID, input EmployeeInput) (*domain.Employee, error)

	// Update merges patch into the employee. Returns store.ErrEmployeeNotFound
	// if the employee does not exist or belongs to someone else.
	Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.EmployeePatch) (*domain.Employee, error)

	// Delete removes the employee. Returns ErrEmployeeHasTasks while any task
	// is assigned to it.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type employeeServiceImpl struct {
	scopes   store.Scopes
	timeFunc func() time.Time
	logger   *slog.Logger
}

// NewEmployeeService creates an EmployeeService.
func NewEmployeeService(scopes store.Scopes, logger *slog.Logger) (EmployeeService, error) {
	if scopes == nil {
		return nil, domain.NewValidationError("scopes", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &employeeServiceImpl{
		scopes:   scopes,
		timeFunc: time.Now,
		logger:   logger.With(slog.String("component", "employee_service")),
	}, nil
}

func (s *employeeServiceImpl) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Employee, error) {
	employees, err := s.scopes.ForOwner(ownerID).Employees().List(ctx)
	if err != nil {
		return nil, NewServiceError("employee", "list", "failed to list employees", err)
	}
	return employees, nil
}

func (s *employeeServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input EmployeeInput,
) (*domain.Employee, error) {
	employee, err := domain.NewEmployee(ownerID, input.Name, input.Position, input.Telegram, s.timeFunc())
	if err != nil {
		return nil, err
	}

	if err := s.scopes.ForOwner(ownerID).Employees().Create(ctx, employee); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create employee",
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("employee", "create", "failed to save employee", err)
	}
	return employee, nil
}

func (s *employeeServiceImpl) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	patch domain.EmployeePatch,
) (*domain.Employee, error) {
	var updated *domain.Employee
	err := s.scopes.RunInTx(ctx, ownerID, func(ctx context.Context, scope store.Scope) error {
		employee, err := scope.Employees().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := employee.Apply(patch, s.timeFunc()); err != nil {
			return err
		}
		if err := scope.Employees().Update(ctx, employee); err != nil {
			return err
		}
		updated = employee
		return nil
	})
	if err != nil {
		return nil, NewServiceError("employee", "update", "failed to update employee", err)
	}
	return updated, nil
}

func (s *employeeServiceImpl) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.scopes.RunInTx(ctx, ownerID, func(ctx context.Context, scope store.Scope) error {
		if _, err := scope.Employees().Get(ctx, id); err != nil {
			return err
		}

		count, err := scope.Employees().CountTasks(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrEmployeeHasTasks
		}

		err = scope.Employees().Delete(ctx, id)
		if errors.Is(err, store.ErrReferenced) {
			// A task was assigned between the count and the delete.
			return ErrEmployeeHasTasks
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrEmployeeHasTasks) {
			log.Debug("refusing to delete employee with tasks", slog.String("employee_id", id.String()))
		}
		return NewServiceError("employee", "delete", "failed to delete employee", err)
	}

	log.Info("employee deleted", slog.String("employee_id", id.String()))
	return nil
}
