// Package auth issues and validates the bearer tokens used by the API and
// verifies user passwords.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks the signature and expiry of tokenString and returns
	// its claims. Returns ErrExpiredToken, ErrTokenNotYetValid or
	// ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of a token.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
