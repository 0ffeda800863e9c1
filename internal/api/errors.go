package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/crewdesk/crewdesk-api/internal/api/shared"
	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/service"
	"github.com/crewdesk/crewdesk-api/internal/service/auth"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// ErrInvalidRequest marks a body that could not be read or decoded.
var ErrInvalidRequest = errors.New("invalid request format")

const unexpectedErrorMessage = "An unexpected error occurred"

// MapErrorToStatusCode maps internal errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	status, _ := classify(err)
	return status
}

// GetSafeErrorMessage returns the message shown to clients for err. Only
// messages written for clients are passed through; anything else gets a
// generic text.
func GetSafeErrorMessage(err error) string {
	_, message := classify(err)
	return message
}

// HandleAPIError writes the mapped error response for err and logs the cause.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

func classify(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, unexpectedErrorMessage
	}

	var notifyErr *service.NotificationError
	var validationErrs validator.ValidationErrors
	var domainErr *domain.ValidationError

	switch {
	// Bad request
	case errors.As(err, &notifyErr):
		return http.StatusBadRequest, capitalize(notifyErr.Error())
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, SanitizeValidationError(err)
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid request format"
	case errors.As(err, &domainErr):
		return http.StatusBadRequest, capitalize(domainErr.Message)
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "Validation error"
	case errors.Is(err, service.ErrAssigneeNotFound):
		return http.StatusBadRequest, "Employee not found"
	case errors.Is(err, service.ErrMissingCredentials):
		return http.StatusBadRequest, "Bot token and chat ID are required"
	case errors.Is(err, service.ErrNotificationFailed):
		return http.StatusBadRequest, "Failed to send test message"
	case errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest, "Invalid entity data"

	// Conflicts are reported as bad requests
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusBadRequest, "User with this email already exists"
	case errors.Is(err, service.ErrEmployeeHasTasks):
		return http.StatusBadRequest, "Cannot delete an employee with active tasks"
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusBadRequest, "Resource already exists"

	// Authentication
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusUnauthorized, "User not found"

	// Not found
	case errors.Is(err, store.ErrEmployeeNotFound):
		return http.StatusNotFound, "Employee not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return http.StatusNotFound, "Task not found"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Resource not found"

	default:
		return http.StatusInternalServerError, unexpectedErrorMessage
	}
}

// SanitizeValidationError turns validator errors into a short message naming
// the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag(), fe.Param()))
}

func getValidationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "uuid":
		return "must be a valid ID"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		return "validation failed"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
