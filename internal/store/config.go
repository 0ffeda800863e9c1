package store

import (
	"context"
	"time"

	"github.com/crewdesk/crewdesk-api/internal/domain"
)

// ConfigStore persists the single notification config of an owner.
type ConfigStore interface {
	// GetOrCreate returns the owner's config, inserting an empty one first if
	// none exists. Concurrent first calls yield the same row.
	GetOrCreate(ctx context.Context, now time.Time) (*domain.Config, error)

	// Find returns the owner's config without creating it.
	// Returns ErrConfigNotFound if none exists.
	Find(ctx context.Context) (*domain.Config, error)

	// Save inserts or updates the owner's bot token and chat ID.
	Save(ctx context.Context, cfg *domain.Config) error
}
