// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// devSessionSecret signs tokens in development when no secret is configured.
const devSessionSecret = "chapterpress-development-secret-do-not-use"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Content store. The URI scheme selects the backend.
	DatabaseURI  string
	DatabaseName string

	// Admin session
	SessionSecret   string
	SessionTTL      time.Duration
	AdminUsername   string
	AdminPassword   string // plain text or a bcrypt hash
	AdminTOTPSecret string

	// Valkey (Redis-compatible cache). Empty host disables the page cache.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// API surface
	CORSOrigins    []string
	LoginRateLimit int // attempts per minute per client IP
}

// Load reads .env files (when present) and then the environment, applying
// defaults for development where appropriate. Returns an error if critical
// values are missing or malformed.
func Load() (*Config, error) {
	// Missing files are fine; real environment variables always win.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DatabaseURI:  envOrDefault("DATABASE_URI", os.Getenv("MONGODB_URI")),
		DatabaseName: envOrDefault("DATABASE_NAME", "chapterpress"),

		SessionSecret:   envOrDefault("SESSION_SECRET", os.Getenv("NEXTAUTH_SECRET")),
		AdminUsername:   os.Getenv("ADMIN_USERNAME"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		AdminTOTPSecret: os.Getenv("ADMIN_TOTP_SECRET"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		CORSOrigins: splitList(envOrDefault("CORS_ORIGINS", "*")),
	}

	var problems []error

	ttl, err := time.ParseDuration(envOrDefault("SESSION_TTL", "720h"))
	if err != nil || ttl <= 0 {
		problems = append(problems, fmt.Errorf("SESSION_TTL must be a positive duration"))
	}
	cfg.SessionTTL = ttl

	limit, err := strconv.Atoi(envOrDefault("LOGIN_RATE_LIMIT", "10"))
	if err != nil || limit <= 0 {
		problems = append(problems, fmt.Errorf("LOGIN_RATE_LIMIT must be a positive integer"))
	}
	cfg.LoginRateLimit = limit

	if cfg.IsDev() {
		if cfg.SessionSecret == "" {
			cfg.SessionSecret = devSessionSecret
		}
		if cfg.AdminUsername == "" && cfg.AdminPassword == "" {
			cfg.AdminUsername, cfg.AdminPassword = "admin", "admin"
		}
	}

	if err := cfg.Validate(); err != nil {
		problems = append(problems, err)
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []error
	if c.AdminUsername == "" || c.AdminPassword == "" {
		problems = append(problems, fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set"))
	}
	if c.SessionSecret == "" {
		problems = append(problems, fmt.Errorf("SESSION_SECRET must be set"))
	}
	if c.Env == "production" {
		if len(c.SessionSecret) < 32 {
			problems = append(problems, fmt.Errorf("SESSION_SECRET must be at least 32 characters in production"))
		}
		if c.SessionSecret == devSessionSecret {
			problems = append(problems, fmt.Errorf("SESSION_SECRET must not use the development default in production"))
		}
		if c.DatabaseURI == "" {
			problems = append(problems, fmt.Errorf("DATABASE_URI must be set in production"))
		}
	}
	return errors.Join(problems...)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// CacheEnabled reports whether a Valkey host was configured.
func (c *Config) CacheEnabled() bool {
	return c.ValkeyHost != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
