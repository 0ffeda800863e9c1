// Package notify formats task notifications and delivers them to the owner's
// Telegram chat in the background.
//
// Delivery is fire-and-forget: a task write never waits for, or fails because
// of, a notification. Each notification is attempted at most once.
package notify

import "context"

// Result is the outcome of one send attempt. Error holds a human-readable
// reason when Success is false.
type Result struct {
	Success bool
	Error   string
}

// Sender delivers a message to a Telegram chat.
type Sender interface {
	// Send makes exactly one delivery attempt of text to chatID using
	// botToken. It never panics and reports failures only through Result.
	Send(ctx context.Context, botToken, chatID, text string) Result
}

// Failed builds an unsuccessful Result.
func Failed(reason string) Result {
	return Result{Error: reason}
}

// Sent is the successful Result.
var Sent = Result{Success: true}
