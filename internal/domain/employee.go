package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Employee is a person a user assigns tasks to.
type Employee struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	Telegram  string    `json:"telegram"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EmployeePatch holds the fields of a partial employee update. Nil fields are
// left unchanged.
type EmployeePatch struct {
	Name     *string
	Position *string
	Telegram *string
}

// NormalizeTelegram trims a Telegram handle and drops a leading "@".
func NormalizeTelegram(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// NewEmployee creates an Employee owned by ownerID.
func NewEmployee(ownerID uuid.UUID, name, position, telegram string, now time.Time) (*Employee, error) {
	e := &Employee{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(name),
		Position:  strings.TrimSpace(position),
		Telegram:  NormalizeTelegram(telegram),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks if the Employee has valid data.
func (e *Employee) Validate() error {
	if e.ID == uuid.Nil {
		return NewValidationError("id", "employee ID cannot be empty")
	}
	if e.OwnerID == uuid.Nil {
		return NewValidationError("ownerId", "employee owner cannot be empty")
	}
	if e.Name == "" {
		return NewValidationError("name", "name is required")
	}
	return nil
}

// Apply merges the non-nil fields of p into e and revalidates.
func (e *Employee) Apply(p EmployeePatch, now time.Time) error {
	if p.Name != nil {
		e.Name = strings.TrimSpace(*p.Name)
	}
	if p.Position != nil {
		e.Position = strings.TrimSpace(*p.Position)
	}
	if p.Telegram != nil {
		e.Telegram = NormalizeTelegram(*p.Telegram)
	}
	e.UpdatedAt = now.UTC()

	return e.Validate()
}
