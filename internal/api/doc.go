// Package api implements the HTTP handlers of the task tracker: registration
// and login, employees, tasks, notification settings, statistics and health.
//
// Handlers decode and validate request DTOs, call the service layer with the
// authenticated user taken from the request context, and translate service
// errors into status codes through MapErrorToStatusCode and
// GetSafeErrorMessage, so internal error text never reaches a client.
package api
