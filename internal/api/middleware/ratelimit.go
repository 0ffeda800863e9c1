package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crewdesk/crewdesk-api/internal/api/shared"
	"github.com/crewdesk/crewdesk-api/internal/platform/logger"
	"github.com/crewdesk/crewdesk-api/internal/platform/metrics"
	"github.com/crewdesk/crewdesk-api/internal/redact"
)

// Counter is the subset of redis.Cmdable the rate limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// noExpiry is what TTL reports for a key that exists without a timeout.
const noExpiry = time.Duration(-1)

var _ Counter = (*redis.Client)(nil)

// RateLimitConfig describes one fixed window.
type RateLimitConfig struct {
	// Name labels the limiter in keys and metrics, e.g. "auth".
	Name   string
	Limit  int
	Window time.Duration
}

// RateLimiter is a fixed-window limiter keyed by client IP and backed by
// Redis INCR/EXPIRE. It fails open: with no counter, or when Redis errors,
// requests are let through.
type RateLimiter struct {
	counter Counter
	config  RateLimitConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRateLimiter creates a RateLimiter. A nil counter disables limiting.
func NewRateLimiter(counter Counter, config RateLimitConfig, m *metrics.Metrics, log *slog.Logger) *RateLimiter {
	if log == nil {
		log = slog.Default()
	}
	return &RateLimiter{
		counter: counter,
		config:  config,
		metrics: m,
		logger:  log.With(slog.String("component", "rate_limiter"), slog.String("limiter", config.Name)),
	}
}

// Enabled reports whether requests are actually counted.
func (l *RateLimiter) Enabled() bool {
	return l.counter != nil && l.config.Limit > 0 && l.config.Window > 0
}

// Limit is the middleware.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := l.key(clientIP(r))

		count, err := l.counter.Incr(ctx, key).Result()
		if err != nil {
			logger.FromContextOrDefault(ctx, l.logger).Warn("rate limiter unavailable, allowing request",
				append(requestAttrs(r), slog.String("error", redact.Error(err)))...)
			w.Header().Set("X-RateLimit-Error", "redis-error")
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 || l.windowMissing(ctx, key) {
			if err := l.counter.Expire(ctx, key, l.config.Window).Err(); err != nil {
				logger.FromContextOrDefault(ctx, l.logger).Warn("failed to set rate limit window",
					slog.String("error", redact.Error(err)))
			}
		}

		remaining := int64(l.config.Limit) - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.config.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(l.config.Limit) {
			l.metrics.RecordRateLimit(l.config.Name, true)
			w.Header().Set("Retry-After", strconv.Itoa(int(l.config.Window.Seconds())))
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests, "Rate limit exceeded", nil)
			return
		}

		l.metrics.RecordRateLimit(l.config.Name, false)
		next.ServeHTTP(w, r)
	})
}

// windowMissing reports whether key lost its expiry, which happens when the
// EXPIRE after the first hit failed. Such a key would never reset.
func (l *RateLimiter) windowMissing(ctx context.Context, key string) bool {
	ttl, err := l.counter.TTL(ctx, key).Result()
	return err == nil && ttl == noExpiry
}

func (l *RateLimiter) key(ident string) string {
	return fmt.Sprintf("rl:%s:%d:%s", l.config.Name, int64(l.config.Window.Seconds()), ident)
}

// clientIP strips the port from RemoteAddr, which chi's RealIP middleware has
// already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestAttrs(r *http.Request) []any {
	return []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
}
