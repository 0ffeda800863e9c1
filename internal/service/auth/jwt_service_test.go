package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk-api/internal/config"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestJWTService(t *testing.T, secret string, lifetime time.Duration, now time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(secret, lifetime, func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 43200})
	require.NoError(t, err)
	assert.NotNil(t, svc)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	lifetime := 30 * 24 * time.Hour
	userID := uuid.New()
	svc := newTestJWTService(t, testSecret, lifetime, fixedTime)

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(lifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, testSecret, time.Hour, fixedTime)
	userID := uuid.New()

	first, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	second, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "jti makes every token distinct")
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	lifetime := time.Hour
	userID := uuid.New()

	issue := func(t *testing.T, secret string, at time.Time) string {
		t.Helper()
		token, err := newTestJWTService(t, secret, lifetime, at).GenerateToken(context.Background(), userID)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name       string
		token      func(t *testing.T) string
		validateAt time.Time
		wantErr    error
	}{
		{
			name:       "valid token",
			token:      func(t *testing.T) string { return issue(t, testSecret, fixedTime) },
			validateAt: fixedTime.Add(30 * time.Minute),
		},
		{
			name:       "within clock skew after expiry",
			token:      func(t *testing.T) string { return issue(t, testSecret, fixedTime) },
			validateAt: fixedTime.Add(lifetime + time.Minute),
		},
		{
			name:       "expired token",
			token:      func(t *testing.T) string { return issue(t, testSecret, fixedTime) },
			validateAt: fixedTime.Add(lifetime + 5*time.Minute),
			wantErr:    ErrExpiredToken,
		},
		{
			name:       "issued in the future",
			token:      func(t *testing.T) string { return issue(t, testSecret, fixedTime.Add(time.Hour)) },
			validateAt: fixedTime,
			wantErr:    ErrTokenNotYetValid,
		},
		{
			name:       "wrong signature",
			token:      func(t *testing.T) string { return issue(t, wrongSecret, fixedTime) },
			validateAt: fixedTime,
			wantErr:    ErrInvalidToken,
		},
		{
			name:       "malformed token",
			token:      func(t *testing.T) string { return "not.a.jwt" },
			validateAt: fixedTime,
			wantErr:    ErrInvalidToken,
		},
		{
			name: "unsigned token",
			token: func(t *testing.T) string {
				claims := jwtCustomClaims{
					UserID: userID,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				s, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return s
			},
			validateAt: fixedTime,
			wantErr:    ErrInvalidToken,
		},
		{
			name: "missing uid",
			token: func(t *testing.T) string {
				claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour))}
				s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return s
			},
			validateAt: fixedTime,
			wantErr:    ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := newTestJWTService(t, testSecret, lifetime, tt.validateAt)
			claims, err := svc.ValidateToken(context.Background(), tt.token(t))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}
