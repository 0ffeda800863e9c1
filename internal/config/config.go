package config

// DefaultJWTSecret is the development fallback signing secret. It exists so the
// service boots with zero configuration on a developer machine and must never be
// used in a real deployment; the server logs a warning whenever it is active.
const DefaultJWTSecret = "crewdesk-development-secret-change-me-now"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	Notify    NotifyConfig    `mapstructure:"notify"     validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port               int      `mapstructure:"port"                 validate:"required,gt=0,lt=65536"`
	LogLevel           string   `mapstructure:"log_level"            validate:"required,oneof=debug info warn error"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" validate:"required,min=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
	AutoMigrate            bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"required,gte=4,lte=31"`
}

// UsesDefaultSecret reports whether the development fallback secret is active.
func (c AuthConfig) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// NotifyConfig controls the background Telegram notification workers.
type NotifyConfig struct {
	Workers             int    `mapstructure:"workers"               validate:"gt=0"`
	QueueSize           int    `mapstructure:"queue_size"            validate:"gt=0"`
	SendTimeoutSeconds  int    `mapstructure:"send_timeout_seconds"  validate:"gt=0"`
	TelegramAPIEndpoint string `mapstructure:"telegram_api_endpoint" validate:"required"`
}

// RedisConfig points at the Redis instance backing the auth rate limiter.
// An empty Addr disables rate limiting.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// RateLimitConfig sets the fixed window applied to the public auth endpoints.
type RateLimitConfig struct {
	AuthRequests  int `mapstructure:"auth_requests"  validate:"gt=0"`
	WindowSeconds int `mapstructure:"window_seconds" validate:"gt=0"`
}
