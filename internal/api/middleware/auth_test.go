package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/mocks"
	"github.com/crewdesk/crewdesk-api/internal/service/auth"
)

func TestNewAuthMiddlewareRequiresDependencies(t *testing.T) {
	_, err := NewAuthMiddleware(nil, mocks.NewMockUserStore())
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewAuthMiddleware(&mocks.MockJWTService{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	user := &domain.User{
		ID:             uuid.New(),
		Email:          "owner@example.com",
		Name:           "Owner",
		Role:           domain.RoleManager,
		HashedPassword: "hash",
	}
	ghostID := uuid.New()

	tests := []struct {
		name        string
		authHeader  string
		claims      *auth.Claims
		validateErr error
		storeErr    error
		wantStatus  int
		wantError   string
	}{
		{
			name:       "valid token",
			authHeader: "Bearer good-token",
			claims:     &auth.Claims{UserID: user.ID},
			wantStatus: http.StatusOK,
		},
		{
			name:       "lower-case scheme",
			authHeader: "bearer good-token",
			claims:     &auth.Claims{UserID: user.ID},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
			wantError:  "Authorization header required",
		},
		{
			name:       "basic scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid authorization format",
		},
		{
			name:       "bearer without token",
			authHeader: "Bearer ",
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid authorization format",
		},
		{
			name:        "expired token",
			authHeader:  "Bearer old",
			validateErr: auth.ErrExpiredToken,
			wantStatus:  http.StatusUnauthorized,
			wantError:   "Token expired",
		},
		{
			name:        "bad signature",
			authHeader:  "Bearer forged",
			validateErr: auth.ErrInvalidToken,
			wantStatus:  http.StatusUnauthorized,
			wantError:   "Invalid token",
		},
		{
			name:        "not yet valid",
			authHeader:  "Bearer future",
			validateErr: auth.ErrTokenNotYetValid,
			wantStatus:  http.StatusUnauthorized,
			wantError:   "Invalid token",
		},
		{
			name:        "unexpected validation failure",
			authHeader:  "Bearer weird",
			validateErr: errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "Authentication error",
		},
		{
			name:       "user no longer exists",
			authHeader: "Bearer orphan",
			claims:     &auth.Claims{UserID: ghostID},
			wantStatus: http.StatusUnauthorized,
			wantError:  "User not found",
		},
		{
			name:       "user lookup fails",
			authHeader: "Bearer good-token",
			claims:     &auth.Claims{UserID: user.ID},
			storeErr:   errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Authentication error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			users := mocks.NewMockUserStore()
			users.AddUser(user)
			if tc.storeErr != nil {
				users.GetByIDFn = func(context.Context, uuid.UUID) (*domain.User, error) {
					return nil, tc.storeErr
				}
			}
			jwtService := &mocks.MockJWTService{Claims: tc.claims, ValidateErr: tc.validateErr}

			mw, err := NewAuthMiddleware(jwtService, users)
			require.NoError(t, err)

			var resolved *domain.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				resolved, _ = UserFromRequest(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()

			mw.Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusOK {
				require.NotNil(t, resolved)
				assert.Equal(t, user.ID, resolved.ID)
				assert.Equal(t, user.Email, resolved.Email)
				return
			}

			assert.Nil(t, resolved, "next handler must not run")
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantError, body["error"])
		})
	}
}

func TestAuthenticatePassesTokenToValidator(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Email: "a@example.com", Name: "A", Role: domain.RoleManager}
	users := mocks.NewMockUserStore()
	users.AddUser(user)

	var seen string
	jwtService := &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			seen = token
			return &auth.Claims{UserID: user.ID}, nil
		},
	}
	mw, err := NewAuthMiddleware(jwtService, users)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	mw.Authenticate(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "abc.def.ghi", seen)
}
