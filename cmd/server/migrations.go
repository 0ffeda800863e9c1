package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/crewdesk/crewdesk-api/internal/platform/postgres/migrations"
)

// migrationCommands lists the goose commands accepted by -migrate.
var migrationCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
	"reset":   true,
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level and does not exit; the error reaches main
// through the goose return value.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// runMigrations executes a goose command against the embedded migrations.
func runMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if !migrationCommands[command] {
		return fmt.Errorf("unknown migration command %q", command)
	}

	migrationLogger := logger.With(slog.String("component", "migrations"), slog.String("command", command))
	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	migrationLogger.Info("Running migrations")
	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		return fmt.Errorf("migration command %s failed: %w", command, err)
	}
	migrationLogger.Info("Migrations finished")
	return nil
}
