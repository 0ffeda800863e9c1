package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/platform/logger"
	"github.com/crewdesk/crewdesk-api/internal/redact"
	"github.com/crewdesk/crewdesk-api/internal/service/auth"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService interface {
	// Register creates an account with the default role and returns a token
	// for it. Returns store.ErrEmailExists if the email is taken.
	Register(ctx context.Context, email, password, name string) (*AuthResult, error)

	// Login verifies the credentials. Returns ErrInvalidCredentials for an
	// unknown email or a wrong password.
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authServiceImpl struct {
	users    store.UserStore
	tokens   auth.JWTService
	verifier auth.PasswordVerifier
	timeFunc func() time.Time
	logger   *slog.Logger
}

// NewAuthService creates an AuthService.
// It returns an error if any of the required dependencies are nil.
func NewAuthService(
	users store.UserStore,
	tokens auth.JWTService,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (AuthService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil")
	}
	if tokens == nil {
		return nil, domain.NewValidationError("tokens", "cannot be nil")
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &authServiceImpl{
		users:    users,
		tokens:   tokens,
		verifier: verifier,
		timeFunc: time.Now,
		logger:   logger.With(slog.String("component", "auth_service")),
	}, nil
}

func (s *authServiceImpl) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, name, password, s.timeFunc())
	if err != nil {
		return nil, err
	}

	// The unique index still catches a registration racing this check.
	_, err = s.users.GetByEmail(ctx, user.Email)
	switch {
	case err == nil:
		return nil, store.ErrEmailExists
	case !errors.Is(err, store.ErrUserNotFound):
		log.Error("failed to check for existing user", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("auth", "register", "failed to check email", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, store.ErrEmailExists) {
			log.Error("failed to create user", slog.String("error", redact.Error(err)))
		}
		return nil, NewServiceError("auth", "register", "failed to create user", err)
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		log.Error("failed to generate token", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("auth", "register", "failed to generate token", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for login", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("auth", "login", "failed to load user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			log.Debug("login attempt with wrong password", slog.String("user_id", user.ID.String()))
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to verify password", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("auth", "login", "failed to verify password", err)
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		log.Error("failed to generate token", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("auth", "login", "failed to generate token", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}
