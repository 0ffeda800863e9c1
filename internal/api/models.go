package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/domain"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name"     validate:"required,max=100"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	User UserResponse `json:"user"`
}

// CreateEmployeeRequest is the body of POST /employees.
type CreateEmployeeRequest struct {
	Name     string `json:"name"     validate:"required,max=200"`
	Position string `json:"position" validate:"max=200"`
	Telegram string `json:"telegram" validate:"max=64"`
}

// UpdateEmployeeRequest is the body of PUT /employees/{id}. Omitted fields
// are left unchanged.
type UpdateEmployeeRequest struct {
	Name     *string `json:"name"     validate:"omitempty,max=200"`
	Position *string `json:"position" validate:"omitempty,max=200"`
	Telegram *string `json:"telegram" validate:"omitempty,max=64"`
}

// EmployeeResponse is the public view of an employee.
type EmployeeResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	Telegram  string    `json:"telegram"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	EmployeeID  string     `json:"employeeId"  validate:"required,uuid"`
	Deadline    *Timestamp `json:"deadline"    validate:"required"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Status      string     `json:"status"      validate:"omitempty,oneof=new in_progress completed"`
}

// UpdateTaskRequest is the body of PUT /tasks/{id}. Omitted fields are left
// unchanged; the body itself is recorded in the task history.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	EmployeeID  *string    `json:"employeeId"  validate:"omitempty,uuid"`
	Deadline    *Timestamp `json:"deadline"`
	Priority    *string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Status      *string    `json:"status"      validate:"omitempty,oneof=new in_progress completed"`
	Result      *string    `json:"result"      validate:"omitempty,max=5000"`
}

// TaskResponse is the public view of a task, with its assignee and the
// overdue flag computed at response time.
type TaskResponse struct {
	ID          uuid.UUID             `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	EmployeeID  uuid.UUID             `json:"employeeId"`
	Employee    *EmployeeResponse     `json:"employee"`
	Deadline    time.Time             `json:"deadline"`
	Priority    domain.Priority       `json:"priority"`
	Status      domain.Status         `json:"status"`
	Result      string                `json:"result"`
	CompletedAt *time.Time            `json:"completedAt"`
	History     []domain.HistoryEntry `json:"history"`
	Overdue     bool                  `json:"overdue"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// ConfigResponse is the public view of the notification settings.
type ConfigResponse struct {
	BotToken   string `json:"botToken"`
	ChatID     string `json:"chatId"`
	Configured bool   `json:"configured"`
}

// UpdateConfigRequest is the body of PUT /config. Omitted fields keep their
// current values.
type UpdateConfigRequest struct {
	BotToken *string `json:"botToken" validate:"omitempty,max=256"`
	ChatID   *string `json:"chatId"   validate:"omitempty,max=128"`
}

// TestTelegramRequest is the body of POST /config/test-telegram. Empty
// values fall back to the stored settings.
type TestTelegramRequest struct {
	BotToken string `json:"botToken" validate:"max=256"`
	ChatID   string `json:"chatId"   validate:"max=128"`
}

// TestTelegramResponse reports a successful test message.
type TestTelegramResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}

// timestampLayouts are tried in order. Values without a zone are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp accepts RFC 3339 as well as the date and datetime-local forms
// sent by browser date pickers.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp parses s with the accepted layouts.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toEmployeeResponse(e *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        e.ID,
		Name:      e.Name,
		Position:  e.Position,
		Telegram:  e.Telegram,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toEmployeeResponses(employees []domain.Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, 0, len(employees))
	for i := range employees {
		out = append(out, toEmployeeResponse(&employees[i]))
	}
	return out
}

func toTaskResponse(t *domain.Task, now time.Time) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		EmployeeID:  t.EmployeeID,
		Deadline:    t.Deadline,
		Priority:    t.Priority,
		Status:      t.Status,
		Result:      t.Result,
		CompletedAt: t.CompletedAt,
		History:     t.History,
		Overdue:     t.IsOverdue(now),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if resp.History == nil {
		resp.History = []domain.HistoryEntry{}
	}
	if t.Employee != nil {
		e := toEmployeeResponse(t.Employee)
		resp.Employee = &e
	}
	return resp
}

func toTaskResponses(tasks []domain.Task, now time.Time) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i], now))
	}
	return out
}

func toConfigResponse(c *domain.Config) ConfigResponse {
	return ConfigResponse{
		BotToken:   c.BotToken,
		ChatID:     c.ChatID,
		Configured: c.Configured(),
	}
}
