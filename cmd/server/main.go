// Package main implements the entry point for the CrewDesk API server,
// which tracks employees and the tasks assigned to them and notifies a
// Telegram chat when tasks are created or completed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/crewdesk/crewdesk-api/internal/config"
	"github.com/crewdesk/crewdesk-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version, reset) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if err := run(context.Background(), cfg, appLogger, *migrateCmd); err != nil {
		appLogger.Error("Application exited with error", "error", err)
		os.Exit(1)
	}
}

// run either executes a single migration command or serves the API until a
// shutdown signal arrives.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrateCmd string) error {
	db, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Error closing database connection", "error", err)
			}
		}()
		return runMigrations(ctx, db, migrateCmd, logger)
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(ctx, db, "up", logger); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	app, err := newApplication(ctx, cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
