package notify

import (
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/crewdesk/crewdesk-api/internal/domain"
)

// TimeLayout is the day-first layout used for times in messages. Times are
// rendered in UTC.
const TimeLayout = "02.01.2006 15:04"

var priorityLabels = map[domain.Priority]string{
	domain.PriorityLow:    "Low",
	domain.PriorityMedium: "Medium",
	domain.PriorityHigh:   "High",
}

// PriorityLabel returns the display name of p.
func PriorityLabel(p domain.Priority) string {
	if label, ok := priorityLabels[p]; ok {
		return label
	}
	return string(p)
}

// NewTaskMessage renders the notification sent when a task is created.
func NewTaskMessage(task *domain.Task) string {
	var b strings.Builder
	b.WriteString("<b>New task</b>\n\n")
	writeField(&b, "Title", task.Title)
	if task.Description != "" {
		writeField(&b, "Description", task.Description)
	}
	writeField(&b, "Assignee", assignee(task.Employee))
	writeField(&b, "Priority", PriorityLabel(task.Priority))
	writeField(&b, "Deadline", formatTime(task.Deadline))
	return strings.TrimSuffix(b.String(), "\n")
}

// CompletedTaskMessage renders the notification sent when a task moves into
// the completed status.
func CompletedTaskMessage(task *domain.Task) string {
	var b strings.Builder
	b.WriteString("<b>Task completed</b>\n\n")
	writeField(&b, "Title", task.Title)
	writeField(&b, "Assignee", assignee(task.Employee))
	completedAt := task.UpdatedAt
	if task.CompletedAt != nil {
		completedAt = *task.CompletedAt
	}
	writeField(&b, "Completed", formatTime(completedAt))
	if task.Result != "" {
		writeField(&b, "Result", task.Result)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// TestMessage is sent by the config test endpoint.
func TestMessage() string {
	return "<b>Test message</b>\n\nTelegram notifications are configured correctly."
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString("<b>")
	b.WriteString(label)
	b.WriteString(":</b> ")
	b.WriteString(tgbotapi.EscapeText(tgbotapi.ModeHTML, value))
	b.WriteString("\n")
}

func assignee(e *domain.Employee) string {
	if e == nil {
		return "unknown"
	}
	if e.Telegram == "" {
		return e.Name
	}
	return e.Name + " (@" + e.Telegram + ")"
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
