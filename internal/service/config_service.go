package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/notify"
	"github.com/crewdesk/crewdesk-api/internal/platform/logger"
	"github.com/crewdesk/crewdesk-api/internal/redact"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// ConfigService manages the Telegram notification settings of the calling
// user.
type ConfigService interface {
	// Get returns the owner's config, creating an empty one on first use.
	Get(ctx context.Context, ownerID uuid.UUID) (*domain.Config, error)

	// Update merges patch into the owner's config.
	Update(ctx context.Context, ownerID uuid.UUID, patch domain.ConfigPatch) (*domain.Config, error)

	// TestNotification sends one test message. Empty arguments fall back to
	// the stored values. Returns ErrMissingCredentials when a value is still
	// missing and a *NotificationError when the send fails.
	TestNotification(ctx context.Context, ownerID uuid.UUID, botToken, chatID string) error
}

type configServiceImpl struct {
	scopes      store.Scopes
	sender      notify.Sender
	sendTimeout time.Duration
	timeFunc    func() time.Time
	logger      *slog.Logger
}

// NewConfigService creates a ConfigService. A non-positive sendTimeout
// selects notify.DefaultSendTimeout.
func NewConfigService(
	scopes store.Scopes,
	sender notify.Sender,
	sendTimeout time.Duration,
	logger *slog.Logger,
) (ConfigService, error) {
	if scopes == nil {
		return nil, domain.NewValidationError("scopes", "cannot be nil")
	}
	if sender == nil {
		return nil, domain.NewValidationError("sender", "cannot be nil")
	}
	if sendTimeout <= 0 {
		sendTimeout = notify.DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &configServiceImpl{
		scopes:      scopes,
		sender:      sender,
		sendTimeout: sendTimeout,
		timeFunc:    time.Now,
		logger:      logger.With(slog.String("component", "config_service")),
	}, nil
}

func (s *configServiceImpl) Get(ctx context.Context, ownerID uuid.UUID) (*domain.Config, error) {
	cfg, err := s.scopes.ForOwner(ownerID).Config().GetOrCreate(ctx, s.timeFunc())
	if err != nil {
		return nil, NewServiceError("config", "get", "failed to load config", err)
	}
	return cfg, nil
}

func (s *configServiceImpl) Update(
	ctx context.Context,
	ownerID uuid.UUID,
	patch domain.ConfigPatch,
) (*domain.Config, error) {
	var updated *domain.Config
	err := s.scopes.RunInTx(ctx, ownerID, func(ctx context.Context, scope store.Scope) error {
		now := s.timeFunc()
		cfg, err := scope.Config().GetOrCreate(ctx, now)
		if err != nil {
			return err
		}
		cfg.Apply(patch, now)
		if err := scope.Config().Save(ctx, cfg); err != nil {
			return err
		}
		updated = cfg
		return nil
	})
	if err != nil {
		return nil, NewServiceError("config", "update", "failed to save config", err)
	}
	return updated, nil
}

func (s *configServiceImpl) TestNotification(ctx context.Context, ownerID uuid.UUID, botToken, chatID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	botToken = strings.TrimSpace(botToken)
	chatID = strings.TrimSpace(chatID)

	if botToken == "" || chatID == "" {
		stored, err := s.scopes.ForOwner(ownerID).Config().Find(ctx)
		if err != nil && !errors.Is(err, store.ErrConfigNotFound) {
			return NewServiceError("config", "test_notification", "failed to load config", err)
		}
		if stored != nil {
			if botToken == "" {
				botToken = stored.BotToken
			}
			if chatID == "" {
				chatID = stored.ChatID
			}
		}
	}
	if botToken == "" || chatID == "" {
		return ErrMissingCredentials
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	result := s.sender.Send(sendCtx, botToken, chatID, notify.TestMessage())
	if !result.Success {
		reason := redact.BotToken(result.Error)
		log.Info("test notification failed", slog.String("reason", reason))
		return &NotificationError{Reason: reason}
	}

	log.Info("test notification sent")
	return nil
}
