package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/crewdesk/crewdesk-api/internal/domain"
)

// ContextKey is the type of the request context keys set by the API layer.
type ContextKey string

const (
	// UserContextKey holds the authenticated *domain.User.
	UserContextKey ContextKey = "user"

	// TraceIDKey holds the trace ID of the request.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID (32 hex characters).
	TraceIDLength = 16
)

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*domain.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace ID from the context, or "" if there is none.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

func generateTraceID() string {
	return traceIDFrom(func(b []byte) (int, error) { return rand.Read(b) })
}

// traceIDFrom fills a trace ID from read, falling back to a time-based ID
// when the random source fails.
func traceIDFrom(read func([]byte) (int, error)) string {
	b := make([]byte, TraceIDLength)
	n, err := read(b)
	if err != nil || n != TraceIDLength {
		slog.Error("failed to generate random trace ID",
			slog.Any("error", err),
			slog.Int("bytes_read", n))
		return fallbackTraceID(time.Now())
	}
	return hex.EncodeToString(b)
}

func fallbackTraceID(now time.Time) string {
	b := make([]byte, TraceIDLength)
	binary.BigEndian.PutUint64(b[:8], uint64(now.UnixNano()))
	binary.BigEndian.PutUint32(b[8:12], uint32(now.Nanosecond()))
	binary.BigEndian.PutUint32(b[12:16], uint32(now.Unix()))
	return hex.EncodeToString(b)
}
