package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds a user's Telegram notification settings. Each user has at most
// one; an empty BotToken or ChatID means notifications are off.
type Config struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	BotToken  string    `json:"botToken"`
	ChatID    string    `json:"chatId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConfigPatch holds the fields of a config update. Nil fields keep their
// current value.
type ConfigPatch struct {
	BotToken *string
	ChatID   *string
}

// NewConfig returns an empty Config for ownerID.
func NewConfig(ownerID uuid.UUID, now time.Time) *Config {
	return &Config{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// Configured reports whether both credentials are present.
func (c *Config) Configured() bool {
	return c != nil && c.BotToken != "" && c.ChatID != ""
}

// Apply merges the non-nil fields of p into c, trimming whitespace.
func (c *Config) Apply(p ConfigPatch, now time.Time) {
	if p.BotToken != nil {
		c.BotToken = strings.TrimSpace(*p.BotToken)
	}
	if p.ChatID != nil {
		c.ChatID = strings.TrimSpace(*p.ChatID)
	}
	c.UpdatedAt = now.UTC()
}
