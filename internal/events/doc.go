// Package events lets services announce committed changes without knowing who
// listens. The task service emits task.created and task.completed; the
// notification dispatcher subscribes to them.
package events
