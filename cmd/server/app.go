package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crewdesk/crewdesk-api/internal/api"
	apimw "github.com/crewdesk/crewdesk-api/internal/api/middleware"
	"github.com/crewdesk/crewdesk-api/internal/config"
	"github.com/crewdesk/crewdesk-api/internal/events"
	"github.com/crewdesk/crewdesk-api/internal/jobs"
	"github.com/crewdesk/crewdesk-api/internal/notify"
	"github.com/crewdesk/crewdesk-api/internal/platform/metrics"
	"github.com/crewdesk/crewdesk-api/internal/platform/postgres"
	"github.com/crewdesk/crewdesk-api/internal/platform/telegram"
	"github.com/crewdesk/crewdesk-api/internal/service"
	"github.com/crewdesk/crewdesk-api/internal/service/auth"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// redisPingTimeout bounds the startup check of the rate limit backend.
const redisPingTimeout = 2 * time.Second

// dependencies are the storage and delivery backends the application is
// assembled from.
type dependencies struct {
	scopes   store.Scopes
	users    store.UserStore
	tokens   auth.JWTService
	verifier auth.PasswordVerifier
	sender   notify.Sender
	counter  apimw.Counter
}

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	redis   *redis.Client
	metrics *metrics.Metrics

	queue   *jobs.Queue
	workers *jobs.WorkerPool

	handlers       api.Handlers
	authMiddleware *apimw.AuthMiddleware
	authLimiter    *apimw.RateLimiter
}

// newApplication creates the production application on top of an open
// database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	tokens, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	if cfg.Auth.UsesDefaultSecret() {
		logger.Warn("Using the built-in development JWT secret; set CREWDESK_AUTH_JWT_SECRET in production")
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	sendTimeout := time.Duration(cfg.Notify.SendTimeoutSeconds) * time.Second
	deps := dependencies{
		scopes:   postgres.NewScopes(db, logger),
		users:    postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger),
		tokens:   tokens,
		verifier: auth.NewBcryptVerifier(),
		sender: telegram.NewClient(
			cfg.Notify.TelegramAPIEndpoint,
			&http.Client{Timeout: sendTimeout},
			logger,
		),
	}

	redisClient := connectRedis(ctx, cfg.Redis, logger)
	if redisClient != nil {
		deps.counter = redisClient
	}

	app, err := buildApplication(cfg, logger, deps)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}
	app.db = db
	app.redis = redisClient

	logger.Info("Application initialized successfully")
	return app, nil
}

// connectRedis returns a client for the rate limit backend, or nil when Redis
// is not configured or does not answer.
func connectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		logger.Info("Redis not configured, auth rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, auth rate limiting disabled",
			"addr", cfg.Addr,
			"error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("Connected to Redis", "addr", cfg.Addr)
	return client
}

// buildApplication assembles services, the notification pipeline and the
// HTTP layer from deps. The worker pool is created but not started.
func buildApplication(cfg *config.Config, logger *slog.Logger, deps dependencies) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	app.queue = jobs.NewQueue(cfg.Notify.QueueSize, logger)
	app.workers = jobs.NewWorkerPool(app.queue, jobs.WorkerPoolConfig{WorkerCount: cfg.Notify.Workers}, logger)

	sendTimeout := time.Duration(cfg.Notify.SendTimeoutSeconds) * time.Second
	dispatcher, err := notify.NewDispatcher(
		deps.scopes,
		deps.sender,
		app.queue,
		notify.DispatcherConfig{SendTimeout: sendTimeout},
		app.metrics,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification dispatcher: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(dispatcher)

	authService, err := service.NewAuthService(deps.users, deps.tokens, deps.verifier, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}
	employeeService, err := service.NewEmployeeService(deps.scopes, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create employee service: %w", err)
	}
	taskService, err := service.NewTaskService(deps.scopes, emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	configService, err := service.NewConfigService(deps.scopes, deps.sender, sendTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create config service: %w", err)
	}
	statsService, err := service.NewStatsService(deps.scopes, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create stats service: %w", err)
	}

	if app.handlers.Auth, err = api.NewAuthHandler(authService); err != nil {
		return nil, err
	}
	if app.handlers.Employees, err = api.NewEmployeeHandler(employeeService); err != nil {
		return nil, err
	}
	if app.handlers.Tasks, err = api.NewTaskHandler(taskService); err != nil {
		return nil, err
	}
	if app.handlers.Config, err = api.NewConfigHandler(configService); err != nil {
		return nil, err
	}
	if app.handlers.Stats, err = api.NewStatsHandler(statsService); err != nil {
		return nil, err
	}

	app.authMiddleware, err = apimw.NewAuthMiddleware(deps.tokens, deps.users)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth middleware: %w", err)
	}

	app.authLimiter = apimw.NewRateLimiter(deps.counter, apimw.RateLimitConfig{
		Name:   "auth",
		Limit:  cfg.RateLimit.AuthRequests,
		Window: time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
	}, app.metrics, logger)

	return app, nil
}

// Run starts the notification workers and serves HTTP until ctx is cancelled
// or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	app.workers.Start()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.queue != nil {
		app.queue.Close()
	}
	if app.workers != nil {
		app.workers.Stop()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing Redis client", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
