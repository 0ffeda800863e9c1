package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/api/shared"
	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/service"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// TaskHandler serves the task resource of the calling user.
type TaskHandler struct {
	tasks    service.TaskService
	timeFunc func() time.Time
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks service.TaskService) (*TaskHandler, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil")
	}
	return &TaskHandler{tasks: tasks, timeFunc: time.Now}, nil
}

// List handles GET /tasks. The optional status, priority and employeeId
// query parameters narrow the result.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	filter, err := parseTaskFilter(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, filter)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toTaskResponses(tasks, h.timeFunc()))
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if _, ok := decodeRequest(w, r, &req); !ok {
		return
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		HandleAPIError(w, r, errInvalid(err))
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		EmployeeID:  employeeID,
		Deadline:    req.Deadline.Time,
		Priority:    domain.Priority(req.Priority),
		Status:      domain.Status(req.Status),
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, toTaskResponse(task, h.timeFunc()))
}

// Update handles PUT /tasks/{id}. The request body is stored verbatim as the
// changes of the new history entry.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, store.ErrTaskNotFound)
	if !ok {
		return
	}
	var req UpdateTaskRequest
	body, ok := decodeRequest(w, r, &req)
	if !ok {
		return
	}
	changes, err := compactObject(body)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	patch, err := req.patch()
	if err != nil {
		HandleAPIError(w, r, errInvalid(err))
		return
	}

	task, err := h.tasks.Update(r.Context(), user.ID, id, patch, changes)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toTaskResponse(task, h.timeFunc()))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, store.ErrTaskNotFound)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), user.ID, id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Task deleted")
}

func (req *UpdateTaskRequest) patch() (domain.TaskPatch, error) {
	p := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Result:      req.Result,
	}
	if req.EmployeeID != nil {
		id, err := uuid.Parse(*req.EmployeeID)
		if err != nil {
			return p, err
		}
		p.EmployeeID = &id
	}
	if req.Deadline != nil {
		deadline := req.Deadline.Time
		p.Deadline = &deadline
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		p.Priority = &priority
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		p.Status = &status
	}
	return p, nil
}

func parseTaskFilter(r *http.Request) (store.TaskFilter, error) {
	var filter store.TaskFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := domain.Status(v)
		if !status.IsValid() {
			return filter, domain.NewValidationError("status", "status must be one of new, in_progress, completed")
		}
		filter.Status = &status
	}
	if v := q.Get("priority"); v != "" {
		priority := domain.Priority(v)
		if !priority.IsValid() {
			return filter, domain.NewValidationError("priority", "priority must be one of low, medium, high")
		}
		filter.Priority = &priority
	}
	if v := q.Get("employeeId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, domain.NewValidationError("employeeId", "employeeId must be a valid ID")
		}
		filter.EmployeeID = &id
	}
	return filter, nil
}

// compactObject strips insignificant whitespace from a JSON object body.
func compactObject(body []byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return nil, errInvalid(err)
	}
	if buf.Len() == 0 || buf.Bytes()[0] != '{' {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidRequest)
	}
	return json.RawMessage(buf.Bytes()), nil
}
