package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/crewdesk/crewdesk-api/internal/api/shared"
	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/service/auth"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// AuthMiddleware resolves bearer tokens to users.
type AuthMiddleware struct {
	jwtService auth.JWTService
	users      store.UserStore
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(jwtService auth.JWTService, users store.UserStore) (*AuthMiddleware, error) {
	if jwtService == nil {
		return nil, domain.NewValidationError("jwtService", "cannot be nil")
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil")
	}
	return &AuthMiddleware{jwtService: jwtService, users: users}, nil
}

// Authenticate validates the bearer token in the Authorization header, loads
// the user it was issued to and stores that user in the request context.
// Requests without a valid token for an existing user get 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		user, err := m.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "User not found", err,
					shared.WithElevatedLogLevel())
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		ctx := shared.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromRequest returns the user resolved by Authenticate.
func UserFromRequest(r *http.Request) (*domain.User, bool) {
	return shared.UserFromContext(r.Context())
}

