package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the task service after a write commits.
const (
	TypeTaskCreated   = "task.created"
	TypeTaskCompleted = "task.completed"
)

// Event is a notification that something happened to an owner's data.
type Event struct {
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants.
	Type string `json:"type"`

	// OwnerID is the user whose records the event concerns.
	OwnerID uuid.UUID `json:"owner_id"`

	// Payload is the JSON-encoded subject of the event.
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event of the given type for ownerID, encoding payload
// as JSON.
func NewEvent(eventType string, ownerID uuid.UUID, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		OwnerID:   ownerID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler processes events. Handlers run on the emitting goroutine and
// must return quickly; slow work belongs on the job queue.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter publishes events to registered handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
