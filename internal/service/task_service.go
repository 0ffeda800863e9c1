package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/events"
	"github.com/crewdesk/crewdesk-api/internal/platform/logger"
	"github.com/crewdesk/crewdesk-api/internal/redact"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// TaskInput holds the fields of a new task. Empty Priority and Status take
// their defaults.
type TaskInput struct {
	Title       string
	Description string
	EmployeeID  uuid.UUID
	Deadline    time.Time
	Priority    domain.Priority
	Status      domain.Status
}

// TaskService manages the tasks of the calling user.
type TaskService interface {
	// List returns the owner's tasks matching filter, newest first, each
	// with its assignee.
	List(ctx context.Context, ownerID uuid.UUID, filter store.TaskFilter) ([]domain.Task, error)

	// Create adds a task and emits events.TypeTaskCreated once it is stored.
	// Returns ErrAssigneeNotFound if the employee is not one of the owner's.
	Create(ctx context.Context, ownerID uuid.UUID, input TaskInput) (*domain.Task, error)

	// Update applies patch and records changes, the raw update request, in
	// the task history. A move into the completed status emits
	// events.TypeTaskCompleted once the update is stored.
	Update(
		ctx context.Context,
		ownerID, id uuid.UUID,
		patch domain.TaskPatch,
		changes json.RawMessage,
	) (*domain.Task, error)

	// Delete removes the task.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type taskServiceImpl struct {
	scopes       store.Scopes
	eventEmitter events.EventEmitter
	timeFunc     func() time.Time
	logger       *slog.Logger
}

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	scopes store.Scopes,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	if scopes == nil {
		return nil, domain.NewValidationError("scopes", "cannot be nil")
	}
	if eventEmitter == nil {
		return nil, domain.NewValidationError("eventEmitter", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		scopes:       scopes,
		eventEmitter: eventEmitter,
		timeFunc:     time.Now,
		logger:       logger.With(slog.String("component", "task_service")),
	}, nil
}

func (s *taskServiceImpl) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
) ([]domain.Task, error) {
	tasks, err := s.scopes.ForOwner(ownerID).Tasks().List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("task", "list", "failed to list tasks", err)
	}
	return tasks, nil
}

func (s *taskServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, input TaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(
		ownerID,
		input.EmployeeID,
		input.Title,
		input.Description,
		input.Deadline,
		input.Priority,
		input.Status,
		s.timeFunc(),
	)
	if err != nil {
		return nil, err
	}

	err = s.scopes.RunInTx(ctx, ownerID, func(ctx context.Context, scope store.Scope) error {
		employee, err := s.assignee(ctx, scope, task.EmployeeID)
		if err != nil {
			return err
		}
		if err := scope.Tasks().Create(ctx, task); err != nil {
			if errors.Is(err, store.ErrInvalidEntity) {
				return ErrAssigneeNotFound
			}
			return err
		}
		task.Employee = employee
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "create", err)
		return nil, NewServiceError("task", "create", "failed to create task", err)
	}

	s.emit(ctx, events.TypeTaskCreated, ownerID, task)
	return task, nil
}

func (s *taskServiceImpl) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	patch domain.TaskPatch,
	changes json.RawMessage,
) (*domain.Task, error) {
	var (
		task      *domain.Task
		completed bool
	)

	err := s.scopes.RunInTx(ctx, ownerID, func(ctx context.Context, scope store.Scope) error {
		current, err := scope.Tasks().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		var employee *domain.Employee
		if patch.EmployeeID != nil {
			if employee, err = s.assignee(ctx, scope, *patch.EmployeeID); err != nil {
				return err
			}
		}

		if completed, err = current.Apply(patch, changes, s.timeFunc()); err != nil {
			return err
		}

		if err := scope.Tasks().Update(ctx, current); err != nil {
			if errors.Is(err, store.ErrInvalidEntity) {
				return ErrAssigneeNotFound
			}
			return err
		}

		if employee == nil {
			if employee, err = scope.Employees().Get(ctx, current.EmployeeID); err != nil {
				return err
			}
		}
		current.Employee = employee
		task = current
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "update", err)
		return nil, NewServiceError("task", "update", "failed to update task", err)
	}

	if completed {
		s.emit(ctx, events.TypeTaskCompleted, ownerID, task)
	}
	return task, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.scopes.ForOwner(ownerID).Tasks().Delete(ctx, id); err != nil {
		s.logFailure(ctx, "delete", err)
		return NewServiceError("task", "delete", "failed to delete task", err)
	}
	return nil
}

// assignee loads the employee a task is being assigned to from the caller's
// own employees.
func (s *taskServiceImpl) assignee(ctx context.Context, scope store.Scope, id uuid.UUID) (*domain.Employee, error) {
	employee, err := scope.Employees().Get(ctx, id)
	if errors.Is(err, store.ErrEmployeeNotFound) {
		return nil, ErrAssigneeNotFound
	}
	return employee, err
}

// emit publishes an event for a committed write. Failures are logged and
// never reach the caller.
func (s *taskServiceImpl) emit(ctx context.Context, eventType string, ownerID uuid.UUID, task *domain.Task) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("event_type", eventType),
		slog.String("task_id", task.ID.String()),
	)

	event, err := events.NewEvent(eventType, ownerID, task)
	if err != nil {
		log.Error("failed to build task event", slog.String("error", err.Error()))
		return
	}
	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		log.Warn("task event handler failed", slog.String("error", redact.Error(err)))
	}
}

func (s *taskServiceImpl) logFailure(ctx context.Context, operation string, err error) {
	if isExpected(err) {
		return
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("task operation failed",
		slog.String("operation", operation),
		slog.String("error", redact.Error(err)))
}
