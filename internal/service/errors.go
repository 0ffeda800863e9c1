// Package service implements the application use cases: registration and
// login, employee and task management, notification settings and task
// statistics. Services reach owner data only through store.Scopes, so every
// read and write is bound to the calling user.
package service

import (
	"errors"
	"fmt"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrInvalidCredentials is returned by Login for an unknown email and for
	// a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmployeeHasTasks blocks deleting an employee that tasks still
	// reference.
	ErrEmployeeHasTasks = errors.New("cannot delete an employee with active tasks")

	// ErrAssigneeNotFound means the employeeId of a task write does not name
	// one of the caller's employees.
	ErrAssigneeNotFound = errors.New("employee not found")

	// ErrMissingCredentials means a test notification was requested without
	// a bot token or chat ID.
	ErrMissingCredentials = errors.New("bot token and chat ID are required")

	// ErrNotificationFailed is matched by every *NotificationError.
	ErrNotificationFailed = errors.New("failed to send test message")
)

// NotificationError reports a failed test notification. Reason is the text
// returned by the messaging collaborator.
type NotificationError struct {
	Reason string
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotificationFailed.Error(), e.Reason)
}

// Unwrap lets errors.Is(err, ErrNotificationFailed) match.
func (e *NotificationError) Unwrap() error {
	return ErrNotificationFailed
}

// ServiceError wraps an unexpected failure with the service and operation
// that hit it.
type ServiceError struct {
	// Service is the failing service, e.g. "task"
	Service string
	// Operation is the operation that failed, e.g. "update"
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with context. Expected conditions (validation
// failures, not-found and duplicate store errors, the sentinels of this
// package) are returned unchanged so their messages reach the caller intact.
func NewServiceError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if isExpected(err) {
		return err
	}
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

func isExpected(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		store.ErrNotFound,
		store.ErrDuplicate,
		ErrInvalidCredentials,
		ErrEmployeeHasTasks,
		ErrAssigneeNotFound,
		ErrMissingCredentials,
		ErrNotificationFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
