package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/events"
)

type taskEnv struct {
	*testEnv
	token string
	owner uuid.UUID
	ivan  domain.Employee
}

func newTaskEnv(t *testing.T) *taskEnv {
	t.Helper()
	env := newTestEnv(t)
	token, owner := env.register(t, "boss@example.com")
	return &taskEnv{
		testEnv: env,
		token:   token,
		owner:   owner,
		ivan:    env.addEmployee(owner, "Ivan", "ivan"),
	}
}

func (e *taskEnv) createTask(t *testing.T, body string) TaskResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/tasks", e.token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[TaskResponse](t, rec)
}

func TestCreateTask(t *testing.T) {
	env := newTaskEnv(t)

	task := env.createTask(t, `{"title":"Deliver parcel","employeeId":"`+env.ivan.ID.String()+`","deadline":"2024-03-05"}`)

	assert.Equal(t, "Deliver parcel", task.Title)
	assert.Equal(t, domain.PriorityMedium, task.Priority, "default priority")
	assert.Equal(t, domain.StatusNew, task.Status, "default status")
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), task.Deadline)
	assert.Empty(t, task.History)
	assert.Nil(t, task.CompletedAt)
	assert.False(t, task.Overdue)
	require.NotNil(t, task.Employee, "assignee is embedded")
	assert.Equal(t, "Ivan", task.Employee.Name)
	assert.Equal(t, []string{events.TypeTaskCreated}, env.eventTypes())
}

func TestTaskEmployeeIDIsCaseInsensitive(t *testing.T) {
	env := newTaskEnv(t)
	anna := env.addEmployee(env.owner, "Anna", "")

	task := env.createTask(t, `{"title":"Deliver parcel","employeeId":"`+
		strings.ToUpper(env.ivan.ID.String())+`","deadline":"2024-03-05"}`)
	require.NotNil(t, task.Employee)
	assert.Equal(t, env.ivan.ID, task.Employee.ID)

	rec := env.do(t, http.MethodPut, "/api/tasks/"+task.ID.String(), env.token,
		`{"employeeId":"`+strings.ToUpper(anna.ID.String())+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[TaskResponse](t, rec)
	require.NotNil(t, updated.Employee)
	assert.Equal(t, anna.ID, updated.Employee.ID)
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTaskEnv(t)
	other := env.addEmployee(uuid.New(), "Someone else's", "")

	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{
			name:      "missing title",
			body:      `{"employeeId":"` + env.ivan.ID.String() + `","deadline":"2024-03-05"}`,
			wantError: "Invalid title: required field",
		},
		{
			name:      "missing deadline",
			body:      `{"title":"x","employeeId":"` + env.ivan.ID.String() + `"}`,
			wantError: "Invalid deadline: required field",
		},
		{
			name:      "bad deadline",
			body:      `{"title":"x","employeeId":"` + env.ivan.ID.String() + `","deadline":"next week"}`,
			wantError: "Invalid request format",
		},
		{
			name:      "malformed employee id",
			body:      `{"title":"x","employeeId":"ivan","deadline":"2024-03-05"}`,
			wantError: "Invalid employeeId: must be a valid ID",
		},
		{
			name:      "unknown priority",
			body:      `{"title":"x","employeeId":"` + env.ivan.ID.String() + `","deadline":"2024-03-05","priority":"urgent"}`,
			wantError: "Invalid priority: must be one of low, medium, high",
		},
		{
			name:      "unknown employee",
			body:      `{"title":"x","employeeId":"` + uuid.NewString() + `","deadline":"2024-03-05"}`,
			wantError: "Employee not found",
		},
		{
			name:      "employee of another owner",
			body:      `{"title":"x","employeeId":"` + other.ID.String() + `","deadline":"2024-03-05"}`,
			wantError: "Employee not found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/tasks", env.token, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.wantError, errorMessage(t, rec))
		})
	}
	assert.Empty(t, env.eventTypes(), "rejected creates emit nothing")
}

func TestUpdateTaskRecordsHistory(t *testing.T) {
	env := newTaskEnv(t)
	task := env.createTask(t, `{"title":"Deliver parcel","employeeId":"`+env.ivan.ID.String()+`","deadline":"2024-03-05T10:00:00Z"}`)
	path := "/api/tasks/" + task.ID.String()

	bodies := []string{
		`{"status": "in_progress"}`,
		`{"priority":"high","description":"Fragile"}`,
		`{"status":"completed","result":"Delivered"}`,
	}
	var last TaskResponse
	for _, body := range bodies {
		rec := env.do(t, http.MethodPut, path, env.token, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		last = decode[TaskResponse](t, rec)
	}

	require.Len(t, last.History, len(bodies))
	assert.JSONEq(t, `{"status":"in_progress"}`, string(last.History[0].Changes))
	assert.Equal(t, `{"status":"in_progress"}`, string(last.History[0].Changes), "whitespace is compacted")
	assert.JSONEq(t, bodies[2], string(last.History[2].Changes))
	for _, entry := range last.History {
		assert.Equal(t, domain.HistoryActionUpdated, entry.Action)
	}

	assert.Equal(t, domain.StatusCompleted, last.Status)
	assert.Equal(t, domain.PriorityHigh, last.Priority)
	assert.Equal(t, "Fragile", last.Description)
	assert.Equal(t, "Delivered", last.Result)
	assert.NotNil(t, last.CompletedAt)
	assert.False(t, last.Overdue, "completed tasks are never overdue")
	assert.Equal(t, []string{events.TypeTaskCreated, events.TypeTaskCompleted}, env.eventTypes())
}

func TestUpdateTaskCompletionEmittedOnce(t *testing.T) {
	env := newTaskEnv(t)
	task := env.createTask(t, `{"title":"x","employeeId":"`+env.ivan.ID.String()+`","deadline":"2024-03-05"}`)
	path := "/api/tasks/" + task.ID.String()

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPut, path, env.token, `{"status":"completed"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, []string{events.TypeTaskCreated, events.TypeTaskCompleted}, env.eventTypes())
}

func TestUpdateTaskErrors(t *testing.T) {
	env := newTaskEnv(t)
	task := env.createTask(t, `{"title":"x","employeeId":"`+env.ivan.ID.String()+`","deadline":"2024-03-05"}`)
	path := "/api/tasks/" + task.ID.String()

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "unknown task",
			path:       "/api/tasks/" + uuid.NewString(),
			body:       `{"title":"y"}`,
			wantStatus: http.StatusNotFound,
			wantError:  "Task not found",
		},
		{
			name:       "malformed id",
			path:       "/api/tasks/42",
			body:       `{"title":"y"}`,
			wantStatus: http.StatusNotFound,
			wantError:  "Task not found",
		},
		{
			name:       "not an object",
			path:       path,
			body:       `null`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
		{
			name:       "unknown status",
			path:       path,
			body:       `{"status":"done"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid status: must be one of new, in_progress, completed",
		},
		{
			name:       "blank title",
			path:       path,
			body:       `{"title":"  "}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Title is required",
		},
		{
			name:       "reassign to unknown employee",
			path:       path,
			body:       `{"employeeId":"` + uuid.NewString() + `"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Employee not found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, tc.path, env.token, tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantError, errorMessage(t, rec))
		})
	}

	stored, ok := env.scopes.Task(task.ID)
	require.True(t, ok)
	assert.Empty(t, stored.History, "failed updates leave no history")
}

func TestListTasksFiltersAndOverdue(t *testing.T) {
	env := newTaskEnv(t)
	maria := env.addEmployee(env.owner, "Maria", "")

	late := env.createTask(t, `{"title":"late","employeeId":"`+env.ivan.ID.String()+`","deadline":"2024-01-01","priority":"high"}`)
	env.createTask(t, `{"title":"future","employeeId":"`+maria.ID.String()+`","deadline":"2099-01-01","priority":"low"}`)
	env.createTask(t, `{"title":"done late","employeeId":"`+env.ivan.ID.String()+`","deadline":"2024-01-01","status":"completed"}`)

	rec := env.do(t, http.MethodGet, "/api/tasks", env.token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]TaskResponse](t, rec)
	require.Len(t, all, 3)
	overdue := map[string]bool{}
	for _, task := range all {
		overdue[task.Title] = task.Overdue
		require.NotNil(t, task.Employee)
	}
	assert.Equal(t, map[string]bool{"late": true, "future": false, "done late": false}, overdue)

	tests := []struct {
		query      string
		wantTitles []string
	}{
		{query: "?priority=high", wantTitles: []string{"late"}},
		{query: "?status=completed", wantTitles: []string{"done late"}},
		{query: "?employeeId=" + maria.ID.String(), wantTitles: []string{"future"}},
		{query: "?employeeId=" + env.ivan.ID.String() + "&status=new", wantTitles: []string{"late"}},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/tasks"+tc.query, env.token, "")
			require.Equal(t, http.StatusOK, rec.Code)
			var titles []string
			for _, task := range decode[[]TaskResponse](t, rec) {
				titles = append(titles, task.Title)
			}
			assert.ElementsMatch(t, tc.wantTitles, titles)
		})
	}

	for _, query := range []string{"?status=done", "?priority=urgent", "?employeeId=ivan"} {
		rec := env.do(t, http.MethodGet, "/api/tasks"+query, env.token, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
	assert.True(t, late.Overdue)
}

func TestTasksAreIsolatedByOwner(t *testing.T) {
	env := newTaskEnv(t)
	task := env.createTask(t, `{"title":"secret","employeeId":"`+env.ivan.ID.String()+`","deadline":"2024-03-05"}`)
	otherToken, _ := env.register(t, "other@example.com")

	rec := env.do(t, http.MethodGet, "/api/tasks", otherToken, "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/api/tasks/"+task.ID.String(), otherToken, `{"title":"mine"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/tasks/"+task.ID.String(), otherToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTask(t *testing.T) {
	env := newTaskEnv(t)
	task := env.createTask(t, `{"title":"x","employeeId":"`+env.ivan.ID.String()+`","deadline":"2024-03-05"}`)

	rec := env.do(t, http.MethodDelete, "/api/tasks/"+task.ID.String(), env.token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Task deleted"}`, rec.Body.String())

	rec = env.do(t, http.MethodDelete, "/api/tasks/"+task.ID.String(), env.token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", errorMessage(t, rec))

	rec = env.do(t, http.MethodDelete, "/api/employees/"+env.ivan.ID.String(), env.token, "")
	assert.Equal(t, http.StatusOK, rec.Code, "employee can go once its tasks are gone")
}

func TestTaskResponseShape(t *testing.T) {
	env := newTaskEnv(t)
	env.createTask(t, `{"title":"x","employeeId":"`+env.ivan.ID.String()+`","deadline":"2024-03-05"}`)

	rec := env.do(t, http.MethodGet, "/api/tasks", env.token, "")
	var raw []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw, 1)
	for _, key := range []string{"id", "title", "employeeId", "employee", "deadline", "priority",
		"status", "history", "completedAt", "overdue", "createdAt", "updatedAt"} {
		assert.Contains(t, raw[0], key)
	}
	assert.NotContains(t, raw[0], "ownerId")
	assert.Equal(t, "[]", string(raw[0]["history"]))
}
