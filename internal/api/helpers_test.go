package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk-api/internal/api/middleware"
	"github.com/crewdesk/crewdesk-api/internal/config"
	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/events"
	"github.com/crewdesk/crewdesk-api/internal/mocks"
	"github.com/crewdesk/crewdesk-api/internal/service"
	"github.com/crewdesk/crewdesk-api/internal/service/auth"
)

const testJWTSecret = "api-handler-tests-secret-at-least-32-chars"

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// testEnv wires real services over the in-memory store behind the real
// route table.
type testEnv struct {
	scopes   *mocks.MemoryScopes
	users    *mocks.MockUserStore
	sender   *mocks.MockSender
	emitted  []*events.Event
	tasks    *TaskHandler
	router   http.Handler
	jwt      auth.JWTService
	verifier *mocks.MockPasswordVerifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		scopes: mocks.NewMemoryScopes(),
		users:  mocks.NewMockUserStore(),
		sender: &mocks.MockSender{},
		verifier: &mocks.MockPasswordVerifier{
			CompareFn: func(hashed, password string) error {
				if hashed == "hashed:"+password {
					return nil
				}
				return auth.ErrPasswordMismatch
			},
		},
	}

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            testJWTSecret,
		TokenLifetimeMinutes: 60,
		BcryptCost:           4,
	})
	require.NoError(t, err)
	env.jwt = jwtService

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(events.EventHandlerFunc(func(_ context.Context, e *events.Event) error {
		env.emitted = append(env.emitted, e)
		return nil
	}))

	authSvc, err := service.NewAuthService(env.users, jwtService, env.verifier, log)
	require.NoError(t, err)
	employeeSvc, err := service.NewEmployeeService(env.scopes, log)
	require.NoError(t, err)
	taskSvc, err := service.NewTaskService(env.scopes, emitter, log)
	require.NoError(t, err)
	configSvc, err := service.NewConfigService(env.scopes, env.sender, time.Second, log)
	require.NoError(t, err)
	statsSvc, err := service.NewStatsService(env.scopes, log)
	require.NoError(t, err)

	var h Handlers
	h.Auth, err = NewAuthHandler(authSvc)
	require.NoError(t, err)
	h.Employees, err = NewEmployeeHandler(employeeSvc)
	require.NoError(t, err)
	h.Tasks, err = NewTaskHandler(taskSvc)
	require.NoError(t, err)
	h.Tasks.timeFunc = func() time.Time { return testNow }
	h.Config, err = NewConfigHandler(configSvc)
	require.NoError(t, err)
	h.Stats, err = NewStatsHandler(statsSvc)
	require.NoError(t, err)
	env.tasks = h.Tasks

	authMW, err := middleware.NewAuthMiddleware(jwtService, env.users)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.Trace(log))
	r.Route("/api", Routes(h, authMW.Authenticate, func(next http.Handler) http.Handler { return next }))
	env.router = r
	return env
}

// do sends a request with an optional bearer token and JSON body.
func (env *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// register creates an account through the API and returns its token and ID.
func (env *testEnv) register(t *testing.T, email string) (string, uuid.UUID) {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/auth/register", "",
		`{"email":"`+email+`","password":"secret1","name":"Manager"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[AuthResponse](t, rec)
	return resp.Token, resp.User.ID
}

// addEmployee stores an employee for owner directly in the in-memory store.
func (env *testEnv) addEmployee(owner uuid.UUID, name, telegram string) domain.Employee {
	e := domain.Employee{
		ID:        uuid.New(),
		OwnerID:   owner,
		Name:      name,
		Telegram:  telegram,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	env.scopes.AddEmployee(e)
	return e
}

func (env *testEnv) eventTypes() []string {
	types := make([]string, 0, len(env.emitted))
	for _, e := range env.emitted {
		types = append(types, e.Type)
	}
	return types
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}
