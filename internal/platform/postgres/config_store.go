package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/platform/logger"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// PostgresConfigStore implements store.ConfigStore for one owner.
type PostgresConfigStore struct {
	db      store.DBTX
	ownerID uuid.UUID
	logger  *slog.Logger
}

// NewPostgresConfigStore creates a config store bound to ownerID.
func NewPostgresConfigStore(db store.DBTX, ownerID uuid.UUID, logger *slog.Logger) *PostgresConfigStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresConfigStore{
		db:      db,
		ownerID: ownerID,
		logger:  logger.With(slog.String("component", "config_store")),
	}
}

var _ store.ConfigStore = (*PostgresConfigStore)(nil)

const configColumns = `id, owner_id, bot_token, chat_id, created_at, updated_at`

func scanConfig(row rowScanner) (*domain.Config, error) {
	var c domain.Config
	if err := row.Scan(&c.ID, &c.OwnerID, &c.BotToken, &c.ChatID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreate implements store.ConfigStore.GetOrCreate. The no-op DO UPDATE
// makes RETURNING yield the existing row when one is already there.
func (s *PostgresConfigStore) GetOrCreate(ctx context.Context, now time.Time) (*domain.Config, error) {
	fresh := domain.NewConfig(s.ownerID, now)

	cfg, err := scanConfig(s.db.QueryRowContext(ctx, `
		INSERT INTO configs (`+configColumns+`)
		VALUES ($1, $2, '', '', $3, $3)
		ON CONFLICT (owner_id) DO UPDATE SET owner_id = EXCLUDED.owner_id
		RETURNING `+configColumns,
		fresh.ID, s.ownerID, fresh.CreatedAt,
	))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get or create config",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return cfg, nil
}

// Find implements store.ConfigStore.Find
func (s *PostgresConfigStore) Find(ctx context.Context) (*domain.Config, error) {
	cfg, err := scanConfig(s.db.QueryRowContext(ctx,
		`SELECT `+configColumns+` FROM configs WHERE owner_id = $1`,
		s.ownerID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrConfigNotFound
		}
		return nil, MapError(err)
	}
	return cfg, nil
}

// Save implements store.ConfigStore.Save
func (s *PostgresConfigStore) Save(ctx context.Context, cfg *domain.Config) error {
	cfg.OwnerID = s.ownerID

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO configs (`+configColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id) DO UPDATE
		SET bot_token = EXCLUDED.bot_token,
		    chat_id = EXCLUDED.chat_id,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		cfg.ID, cfg.OwnerID, cfg.BotToken, cfg.ChatID, cfg.CreatedAt, cfg.UpdatedAt,
	).Scan(&cfg.ID, &cfg.CreatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save config",
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}
