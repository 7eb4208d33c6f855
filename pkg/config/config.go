// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Host string `env:"BOOKADMIN_HOST" env-default:"localhost"`
	Port uint16 `env:"BOOKADMIN_PORT" env-default:"4000"`

	// Comma-separated origins allowed by CORS.
	AllowedOrigins []string `env:"BOOKADMIN_ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
	FrontendURL    string   `env:"BOOKADMIN_FRONTEND_URL" env-default:"http://localhost:3000"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DbConfig struct {
	Host     string `env:"BOOKADMIN_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"BOOKADMIN_PG_PORT" env-default:"5432"`
	Database string `env:"BOOKADMIN_PG_DATABASE" env-default:"bookadmin_db"`
	User     string `env:"BOOKADMIN_PG_USER" env-default:"bookadmin"`
	Password string `env:"BOOKADMIN_PG_PASSWORD" env-default:"pwd"`

	// InMemory switches all stores to in-memory implementations. Useful for
	// development without a database; nothing survives a restart.
	InMemory bool `env:"BOOKADMIN_PG_DISABLED" env-default:"false"`
}

func (d DbConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Database)
}

type JwtConfig struct {
	Secret             string        `env:"BOOKADMIN_JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer             string        `env:"BOOKADMIN_JWT_ISSUER" env-default:"booking-admin"`
	AccessTokenExpiry  time.Duration `env:"BOOKADMIN_ACCESS_TOKEN_EXPIRY" env-default:"15m"`
	RefreshTokenExpiry time.Duration `env:"BOOKADMIN_REFRESH_TOKEN_EXPIRY" env-default:"24h"`
	CookieSecure       bool          `env:"BOOKADMIN_COOKIE_SECURE" env-default:"true"`
}

type EmailConfig struct {
	Enabled  bool   `env:"BOOKADMIN_EMAIL_ENABLED" env-default:"false"`
	Host     string `env:"BOOKADMIN_EMAIL_HOST" env-default:"localhost"`
	Port     int    `env:"BOOKADMIN_EMAIL_PORT" env-default:"1025"`
	Username string `env:"BOOKADMIN_EMAIL_USERNAME"`
	Password string `env:"BOOKADMIN_EMAIL_PASSWORD"`
	From     string `env:"BOOKADMIN_EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"BOOKADMIN_EMAIL_TLS" env-default:"false"`
}

type RateLimitConfig struct {
	Enabled bool `env:"BOOKADMIN_RATELIMIT_ENABLED" env-default:"true"`

	// Requests per second sustained, with Burst allowed on top, per client IP.
	PerSecond float64 `env:"BOOKADMIN_RATELIMIT_PER_SECOND" env-default:"10"`
	Burst     int     `env:"BOOKADMIN_RATELIMIT_BURST" env-default:"20"`
}

type ReconcilerConfig struct {
	Enabled  bool          `env:"BOOKADMIN_RECONCILER_ENABLED" env-default:"true"`
	Interval time.Duration `env:"BOOKADMIN_RECONCILER_INTERVAL" env-default:"15m"`
}

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig
	Db         DbConfig
	Jwt        JwtConfig
	Email      EmailConfig
	RateLimit  RateLimitConfig
	Reconciler ReconcilerConfig
}

// Load reads configuration from .env (when present) and the environment.
func Load() (Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}
