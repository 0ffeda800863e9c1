package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/platform/logger"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// PostgresTaskStore implements store.TaskStore for one owner. The task
// history is kept as a JSONB array on the task row.
type PostgresTaskStore struct {
	db      store.DBTX
	ownerID uuid.UUID
	logger  *slog.Logger
}

// NewPostgresTaskStore creates a task store bound to ownerID.
func NewPostgresTaskStore(db store.DBTX, ownerID uuid.UUID, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:      db,
		ownerID: ownerID,
		logger:  logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

const (
	taskColumns = `t.id, t.owner_id, t.employee_id, t.title, t.description, t.deadline,
		t.priority, t.status, t.result, t.completed_at, t.history, t.created_at, t.updated_at`
	joinedEmployeeColumns = `e.id, e.owner_id, e.name, e.position, e.telegram, e.created_at, e.updated_at`
)

func scanTask(row rowScanner, withEmployee bool) (*domain.Task, error) {
	var (
		t           domain.Task
		priority    string
		status      string
		completedAt sql.NullTime
		history     []byte
	)
	dest := []any{
		&t.ID, &t.OwnerID, &t.EmployeeID, &t.Title, &t.Description, &t.Deadline,
		&priority, &status, &t.Result, &completedAt, &history, &t.CreatedAt, &t.UpdatedAt,
	}

	var e domain.Employee
	if withEmployee {
		dest = append(dest, &e.ID, &e.OwnerID, &e.Name, &e.Position, &e.Telegram, &e.CreatedAt, &e.UpdatedAt)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	t.Priority = domain.Priority(priority)
	t.Status = domain.Status(status)
	if completedAt.Valid {
		ts := completedAt.Time.UTC()
		t.CompletedAt = &ts
	}
	t.History = []domain.HistoryEntry{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &t.History); err != nil {
			return nil, fmt.Errorf("failed to decode task history: %w", err)
		}
	}
	if withEmployee {
		t.Employee = &e
	}

	return &t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func encodeHistory(history []domain.HistoryEntry) (string, error) {
	if history == nil {
		history = []domain.HistoryEntry{}
	}
	b, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("failed to encode task history: %w", err)
	}
	return string(b), nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	conditions := []string{"t.owner_id = $1"}
	args := []any{s.ownerID}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		conditions = append(conditions, fmt.Sprintf("t.priority = $%d", len(args)))
	}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("t.employee_id = $%d", len(args)))
	}

	query := `
		SELECT ` + taskColumns + `, ` + joinedEmployeeColumns + `
		FROM tasks t
		JOIN employees e ON e.id = t.employee_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY t.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// Get implements store.TaskStore.Get
func (s *PostgresTaskStore) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`, `+joinedEmployeeColumns+`
		FROM tasks t
		JOIN employees e ON e.id = t.employee_id
		WHERE t.id = $1 AND t.owner_id = $2`,
		id, s.ownerID,
	)
	return s.scanOne(ctx, row, id, true)
}

// GetForUpdate implements store.TaskStore.GetForUpdate
func (s *PostgresTaskStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		WHERE t.id = $1 AND t.owner_id = $2
		FOR UPDATE`,
		id, s.ownerID,
	)
	return s.scanOne(ctx, row, id, false)
}

func (s *PostgresTaskStore) scanOne(ctx context.Context, row rowScanner, id uuid.UUID, withEmployee bool) (*domain.Task, error) {
	t, err := scanTask(row, withEmployee)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	return t, nil
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task.OwnerID = s.ownerID
	if err := task.Validate(); err != nil {
		return err
	}

	history, err := encodeHistory(task.History)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, owner_id, employee_id, title, description, deadline,
			priority, status, result, completed_at, history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12, $13)`,
		task.ID, task.OwnerID, task.EmployeeID, task.Title, task.Description, task.Deadline,
		string(task.Priority), string(task.Status), task.Result, nullTime(task.CompletedAt),
		history, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	return nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	history, err := encodeHistory(task.History)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET employee_id = $1, title = $2, description = $3, deadline = $4,
		    priority = $5, status = $6, result = $7, completed_at = $8,
		    history = $9::jsonb, updated_at = $10
		WHERE id = $11 AND owner_id = $12`,
		task.EmployeeID, task.Title, task.Description, task.Deadline,
		string(task.Priority), string(task.Status), task.Result, nullTime(task.CompletedAt),
		history, task.UpdatedAt,
		task.ID, s.ownerID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`,
		id, s.ownerID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Stats implements store.TaskStore.Stats
func (s *PostgresTaskStore) Stats(ctx context.Context, now time.Time) (domain.TaskStats, error) {
	var stats domain.TaskStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'new'),
			COUNT(*) FILTER (WHERE status = 'in_progress'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status <> 'completed' AND deadline < $2)
		FROM tasks
		WHERE owner_id = $1`,
		s.ownerID, now,
	).Scan(&stats.Total, &stats.New, &stats.InProgress, &stats.Completed, &stats.Overdue)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to compute task stats",
			slog.String("error", err.Error()))
		return domain.TaskStats{}, MapError(err)
	}
	return stats, nil
}
