package api

import (
	"net/http"

	"github.com/crewdesk/crewdesk-api/internal/api/shared"
	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/service"
)

// AuthHandler serves registration, login and the current user.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService service.AuthService) (*AuthHandler, error) {
	if authService == nil {
		return nil, domain.NewValidationError("authService", "cannot be nil")
	}
	return &AuthHandler{authService: authService}, nil
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if _, ok := decodeRequest(w, r, &req); !ok {
		return
	}

	result, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if _, ok := decodeRequest(w, r, &req); !ok {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MeResponse{User: toUserResponse(user)})
}
