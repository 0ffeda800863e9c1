package mocks

import (
	"context"
	"sync"

	"github.com/crewdesk/crewdesk-api/internal/notify"
)

// SentMessage is one call recorded by MockSender.
type SentMessage struct {
	BotToken string
	ChatID   string
	Text     string
}

// MockSender implements notify.Sender and records every call. It succeeds
// unless SendFn or Result says otherwise.
type MockSender struct {
	SendFn func(ctx context.Context, botToken, chatID, text string) notify.Result

	// Result is returned when SendFn is nil. The zero value means success.
	Result *notify.Result

	mu    sync.Mutex
	calls []SentMessage
}

// Send implements notify.Sender.
func (m *MockSender) Send(ctx context.Context, botToken, chatID, text string) notify.Result {
	m.mu.Lock()
	m.calls = append(m.calls, SentMessage{BotToken: botToken, ChatID: chatID, Text: text})
	m.mu.Unlock()

	if m.SendFn != nil {
		return m.SendFn(ctx, botToken, chatID, text)
	}
	if m.Result != nil {
		return *m.Result
	}
	return notify.Sent
}

// Calls returns a copy of the recorded calls.
func (m *MockSender) Calls() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.calls...)
}
