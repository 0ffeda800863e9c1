// Package logger provides structured logging functionality for the application.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/crewdesk/crewdesk-api/internal/config"
)

// Setup initializes the application's logging system from the server
// configuration. It creates a structured JSON logger writing to stdout with the
// configured level and installs it as the slog default, so package-level
// slog calls share the same handler.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	logger := New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger, nil
}

// New builds a JSON logger writing to w at the given level name.
// Unknown level names fall back to info and emit a warning.
func New(w io.Writer, levelName string) *slog.Logger {
	level, ok := ParseLevel(levelName)
	if !ok {
		// The configured logger does not exist yet; warn through a temporary one.
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default level",
			"configured_level", levelName,
			"default_level", "info")
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a case-insensitive level name to a slog.Level.
// The boolean is false when the name is not recognized.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
