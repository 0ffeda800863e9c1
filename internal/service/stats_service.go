package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// StatsService summarizes the tasks of the calling user.
type StatsService interface {
	// TaskStats counts the owner's tasks by status. Overdue is judged
	// against the current time.
	TaskStats(ctx context.Context, ownerID uuid.UUID) (domain.TaskStats, error)
}

type statsServiceImpl struct {
	scopes   store.Scopes
	timeFunc func() time.Time
	logger   *slog.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(scopes store.Scopes, logger *slog.Logger) (StatsService, error) {
	if scopes == nil {
		return nil, domain.NewValidationError("scopes", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &statsServiceImpl{
		scopes:   scopes,
		timeFunc: time.Now,
		logger:   logger.With(slog.String("component", "stats_service")),
	}, nil
}

func (s *statsServiceImpl) TaskStats(ctx context.Context, ownerID uuid.UUID) (domain.TaskStats, error) {
	stats, err := s.scopes.ForOwner(ownerID).Tasks().Stats(ctx, s.timeFunc())
	if err != nil {
		return domain.TaskStats{}, NewServiceError("stats", "tasks", "failed to compute task stats", err)
	}
	return stats, nil
}
