package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

var taskColumnNames = []string{
	"id", "owner_id", "employee_id", "title", "description", "deadline",
	"priority", "status", "result", "completed_at", "history", "created_at", "updated_at",
}

func joinedTaskColumnNames() []string {
	cols := append([]string{}, taskColumnNames...)
	for _, c := range employeeColumnNames {
		cols = append(cols, "e_"+c)
	}
	return cols
}

func TestTaskStoreListWithFilters(t *testing.T) {
	db, mock := newMockDB(t)
	owner := uuid.New()
	employee := uuid.New()
	s := NewPostgresTaskStore(db, owner, discardLogger())

	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	completedAt := now.Add(time.Hour)
	history := `[{"timestamp":"2024-02-01T11:00:00Z","action":"updated","changes":{"status":"completed"}}]`

	mock.ExpectQuery(`JOIN employees e ON e.id = t.employee_id\s+WHERE t.owner_id = \$1 AND t.status = \$2 AND t.employee_id = \$3\s+ORDER BY t.created_at DESC`).
		WithArgs(owner, "completed", employee).
		WillReturnRows(sqlmock.NewRows(joinedTaskColumnNames()).AddRow(
			uuid.NewString(), owner.String(), employee.String(), "Deliver", "", now,
			"high", "completed", "done", completedAt, []byte(history), now, completedAt,
			employee.String(), owner.String(), "Bob", "Courier", "bob", now, now,
		))

	status := domain.StatusCompleted
	tasks, err := s.List(context.Background(), store.TaskFilter{Status: &status, EmployeeID: &employee})

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, completedAt, *task.CompletedAt)
	require.Len(t, task.History, 1)
	assert.Equal(t, domain.HistoryActionUpdated, task.History[0].Action)
	assert.JSONEq(t, `{"status":"completed"}`, string(task.History[0].Changes))
	require.NotNil(t, task.Employee)
	assert.Equal(t, "Bob", task.Employee.Name)
}

func TestTaskStoreGetForUpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	owner := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(`WHERE t.id = \$1 AND t.owner_id = \$2\s+FOR UPDATE`).
		WithArgs(id, owner).
		WillReturnRows(sqlmock.NewRows(taskColumnNames))

	_, err := NewPostgresTaskStore(db, owner, discardLogger()).GetForUpdate(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreUpdateWritesHistory(t *testing.T) {
	db, mock := newMockDB(t)
	owner := uuid.New()
	s := NewPostgresTaskStore(db, owner, discardLogger())

	task, err := domain.NewTask(owner, uuid.New(), "Deliver", "", time.Now(), "", "", time.Now())
	require.NoError(t, err)
	status := domain.StatusCompleted
	_, err = task.Apply(domain.TaskPatch{Status: &status}, json.RawMessage(`{"status":"completed"}`), time.Now())
	require.NoError(t, err)

	encoded, err := encodeHistory(task.History)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE tasks").
		WithArgs(
			task.EmployeeID, "Deliver", "", sqlmock.AnyArg(),
			"medium", "completed", "", sqlmock.AnyArg(),
			encoded, sqlmock.AnyArg(),
			task.ID, owner,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.Update(context.Background(), task))
}

func TestTaskStoreCreateEncodesEmptyHistory(t *testing.T) {
	db, mock := newMockDB(t)
	owner := uuid.New()
	s := NewPostgresTaskStore(db, owner, discardLogger())

	task, err := domain.NewTask(uuid.New(), uuid.New(), "Deliver", "", time.Now(), "", "", time.Now())
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(
			task.ID, owner, task.EmployeeID, "Deliver", "", sqlmock.AnyArg(),
			"medium", "new", "", nil, "[]", sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), task))
	assert.Equal(t, owner, task.OwnerID)
}

func TestTaskStoreDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM tasks").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPostgresTaskStore(db, uuid.New(), discardLogger()).Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreStats(t *testing.T) {
	db, mock := newMockDB(t)
	owner := uuid.New()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FILTER").
		WithArgs(owner, now).
		WillReturnRows(sqlmock.NewRows([]string{"total", "new", "in_progress", "completed", "overdue"}).
			AddRow(5, 2, 1, 2, 1))

	stats, err := NewPostgresTaskStore(db, owner, discardLogger()).Stats(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, domain.TaskStats{Total: 5, New: 2, InProgress: 1, Completed: 2, Overdue: 1}, stats)
}
