package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency of a task.
type Priority string

// Possible priority values
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status is the lifecycle state of a task. The usual flow is
// new -> in_progress -> completed, but any transition is accepted.
type Status string

// Possible status values
const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// HistoryActionUpdated labels the history entry appended by every update.
const HistoryActionUpdated = "updated"

// HistoryEntry records one update of a task. Changes holds the fields the
// caller submitted, exactly as sent.
type HistoryEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Action    string          `json:"action"`
	Changes   json.RawMessage `json:"changes"`
}

// Task is a unit of work assigned to an employee.
type Task struct {
	ID          uuid.UUID      `json:"id"`
	OwnerID     uuid.UUID      `json:"ownerId"`
	EmployeeID  uuid.UUID      `json:"employeeId"`
	Employee    *Employee      `json:"employee,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Deadline    time.Time      `json:"deadline"`
	Priority    Priority       `json:"priority"`
	Status      Status         `json:"status"`
	Result      string         `json:"result"`
	CompletedAt *time.Time     `json:"completedAt"`
	History     []HistoryEntry `json:"history"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TaskPatch holds the fields of a partial task update. Nil fields are left
// unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	EmployeeID  *uuid.UUID
	Deadline    *time.Time
	Priority    *Priority
	Status      *Status
	Result      *string
}

// NewTask creates a Task with an empty history. Empty priority and status
// default to medium and new. A task created as completed gets CompletedAt set.
func NewTask(
	ownerID, employeeID uuid.UUID,
	title, description string,
	deadline time.Time,
	priority Priority,
	status Status,
	now time.Time,
) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}
	if status == "" {
		status = StatusNew
	}

	now = now.UTC()
	t := &Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		EmployeeID:  employeeID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Deadline:    deadline.UTC(),
		Priority:    priority,
		Status:      status,
		History:     []HistoryEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == StatusCompleted {
		t.CompletedAt = &now
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "task ID cannot be empty")
	}
	if t.OwnerID == uuid.Nil {
		return NewValidationError("ownerId", "task owner cannot be empty")
	}
	if t.EmployeeID == uuid.Nil {
		return NewValidationError("employeeId", "employeeId is required")
	}
	if t.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if t.Deadline.IsZero() {
		return NewValidationError("deadline", "deadline is required")
	}
	if !t.Priority.IsValid() {
		return NewValidationError("priority", "priority must be one of low, medium, high")
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", "status must be one of new, in_progress, completed")
	}
	return nil
}

// Apply merges the non-nil fields of p into t, appends one history entry
// holding changes and revalidates. It reports whether the update moved the
// task into the completed status, in which case CompletedAt is set to now.
// On a validation error t is left unmodified.
func (t *Task) Apply(p TaskPatch, changes json.RawMessage, now time.Time) (bool, error) {
	now = now.UTC()
	updated := *t
	updated.History = append(append([]HistoryEntry(nil), t.History...), HistoryEntry{
		Timestamp: now,
		Action:    HistoryActionUpdated,
		Changes:   changes,
	})

	if p.Title != nil {
		updated.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		updated.Description = strings.TrimSpace(*p.Description)
	}
	if p.EmployeeID != nil {
		updated.EmployeeID = *p.EmployeeID
		if t.Employee != nil && t.Employee.ID != *p.EmployeeID {
			updated.Employee = nil
		}
	}
	if p.Deadline != nil {
		updated.Deadline = p.Deadline.UTC()
	}
	if p.Priority != nil {
		updated.Priority = *p.Priority
	}
	if p.Status != nil {
		updated.Status = *p.Status
	}
	if p.Result != nil {
		updated.Result = strings.TrimSpace(*p.Result)
	}

	completed := t.Status != StatusCompleted && updated.Status == StatusCompleted
	if completed {
		updated.CompletedAt = &now
	}
	updated.UpdatedAt = now

	if err := updated.Validate(); err != nil {
		return false, err
	}

	*t = updated
	return completed, nil
}

// IsOverdue reports whether the task is unfinished and past its deadline.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != StatusCompleted && t.Deadline.Before(now)
}
