package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/api/shared"
	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/platform/logger"
)

// currentUser returns the user resolved by the auth middleware. It writes a
// 401 and returns false when the route was mounted without it.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		logger.FromContext(r.Context()).Warn("authenticated route reached without a user in context",
			slog.String("path", r.URL.Path))
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return user, true
}

// pathID parses the {id} path parameter. A malformed ID cannot name an
// existing record, so it is answered with notFound rather than a 400.
func pathID(w http.ResponseWriter, r *http.Request, notFound error) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.FromContext(r.Context()).Debug("malformed path ID", slog.String("value", raw))
		HandleAPIError(w, r, notFound)
		return uuid.Nil, false
	}
	return id, true
}

// decodeRequest reads the body into v and validates it, writing a 400 on
// failure. It returns the raw body for handlers that record it.
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) ([]byte, bool) {
	body, err := shared.ReadBody(w, r)
	if err == nil {
		err = shared.Unmarshal(body, v)
	}
	if err != nil {
		HandleAPIError(w, r, errInvalid(err))
		return nil, false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err)
		return nil, false
	}
	return body, true
}

// errInvalid marks err as a malformed request.
func errInvalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
}
