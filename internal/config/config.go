// Package config loads the server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Built-in defaults that are fine for local use and rejected in production.
const (
	insecureJWTSecret     = "change-this-jwt-secret-in-production"
	insecureAdminPassword = "adminImpact2025"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Host   string `env:"HOST" envDefault:""`
	Port   int    `env:"PORT" envDefault:"3001"`
	DBPath string `env:"DB_PATH" envDefault:"./data/biblestudy.db"`
	Env    string `env:"ENV" envDefault:"development"`

	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`

	JWTSecret    string        `env:"JWT_SECRET" envDefault:"change-this-jwt-secret-in-production"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"1h"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"10"`

	DefaultAdminUsername string `env:"DEFAULT_ADMIN_USERNAME" envDefault:"admin"`
	DefaultAdminPassword string `env:"DEFAULT_ADMIN_PASSWORD" envDefault:"adminImpact2025"`

	// Per client IP limits on login and registration.
	LoginRateLimit float64 `env:"LOGIN_RATE_LIMIT" envDefault:"1"`
	LoginBurst     int     `env:"LOGIN_BURST" envDefault:"10"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// IsProduction reports whether ENV is "production".
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// ServerAddr returns the listen address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// String renders the configuration for logs with secrets masked.
func (c Config) String() string {
	return fmt.Sprintf(
		"env=%s addr=%s db=%s log_level=%s cors_origin=%s jwt_secret=%s jwt_expires_in=%s "+
			"bcrypt_cost=%d admin=%s admin_password=%s login_rate=%g login_burst=%d shutdown_timeout=%s",
		c.Env, c.ServerAddr(), c.DBPath, c.LogLevel, c.CORSOrigin, mask(c.JWTSecret), c.JWTExpiresIn,
		c.BcryptCost, c.DefaultAdminUsername, mask(c.DefaultAdminPassword), c.LoginRateLimit, c.LoginBurst,
		c.ShutdownTimeout,
	)
}

func mask(secret string) string {
	if secret == "" {
		return "<empty>"
	}
	return "****"
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.JWTExpiresIn <= 0 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.JWTExpiresIn))
	}
	if c.LoginRateLimit <= 0 || c.LoginBurst <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and LOGIN_BURST must be positive"))
	}

	weakSecret := c.JWTSecret == insecureJWTSecret
	weakAdmin := c.DefaultAdminPassword == insecureAdminPassword
	if c.IsProduction() {
		if weakSecret {
			errs = append(errs, errors.New("JWT_SECRET uses the built-in default and must be set in production"))
		}
		if weakAdmin {
			errs = append(errs, errors.New("DEFAULT_ADMIN_PASSWORD uses the built-in default and must be set in production"))
		}
	} else {
		if weakSecret {
			slog.Warn("JWT_SECRET is using the built-in default; set it before deploying")
		}
		if weakAdmin {
			slog.Warn("DEFAULT_ADMIN_PASSWORD is using the built-in default; set it before deploying")
		}
	}

	return errors.Join(errs...)
}
