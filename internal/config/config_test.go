// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"strings"
	"testing"
	"time"
)

var envVars = []string{
	"APP_HOST", "APP_PORT", "APP_ENV",
	"DATABASE_URI", "MONGODB_URI", "DATABASE_NAME",
	"SESSION_SECRET", "NEXTAUTH_SECRET", "SESSION_TTL",
	"ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_TOTP_SECRET",
	"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
	"CORS_ORIGINS", "LOGIN_RATE_LIMIT",
}

// clearEnv sets every variable Load reads to "", which envOrDefault treats
// the same as unset. t.Setenv restores the originals after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

// TestLoad_Defaults verifies that Load returns sensible development defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
	check("Host", cfg.Host, "0.0.0.0")
	check("Port", cfg.Port, "8080")
	check("Env", cfg.Env, "development")
	check("DatabaseURI", cfg.DatabaseURI, "")
	check("DatabaseName", cfg.DatabaseName, "chapterpress")
	check("AdminUsername", cfg.AdminUsername, "admin")
	check("AdminPassword", cfg.AdminPassword, "admin")
	check("SessionSecret", cfg.SessionSecret, devSessionSecret)
	check("ValkeyHost", cfg.ValkeyHost, "")
	check("ValkeyPort", cfg.ValkeyPort, "6379")

	if cfg.SessionTTL != 30*24*time.Hour {
		t.Errorf("SessionTTL = %v, want 720h", cfg.SessionTTL)
	}
	if cfg.LoginRateLimit != 10 {
		t.Errorf("LoginRateLimit = %d, want 10", cfg.LoginRateLimit)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if cfg.CacheEnabled() {
		t.Error("CacheEnabled() = true without VALKEY_HOST")
	}
}

func TestLoad_Fallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGODB_URI", "mongodb://db:27017/press")
	t.Setenv("NEXTAUTH_SECRET", "legacy-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DatabaseURI != "mongodb://db:27017/press" {
		t.Errorf("DatabaseURI = %q, want MONGODB_URI fallback", cfg.DatabaseURI)
	}
	if cfg.SessionSecret != "legacy-secret" {
		t.Errorf("SessionSecret = %q, want NEXTAUTH_SECRET fallback", cfg.SessionSecret)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "3000")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("LOGIN_RATE_LIMIT", "3")
	t.Setenv("VALKEY_HOST", "cache")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:3000" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want 2h", cfg.SessionTTL)
	}
	if got := strings.Join(cfg.CORSOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Errorf("CORSOrigins = %q", got)
	}
	if cfg.LoginRateLimit != 3 {
		t.Errorf("LoginRateLimit = %d, want 3", cfg.LoginRateLimit)
	}
	if !cfg.CacheEnabled() {
		t.Error("CacheEnabled() = false with VALKEY_HOST set")
	}
}

// TestLoad_ProductionCollectsAllProblems verifies that production mode
// reports every missing value in one error.
func TestLoad_ProductionCollectsAllProblems(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_TTL", "soon")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail in production without credentials")
	}
	msg := err.Error()
	for _, want := range []string{"SESSION_TTL", "ADMIN_USERNAME", "SESSION_SECRET", "DATABASE_URI"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %s", msg, want)
		}
	}
}

func TestLoad_ProductionValid(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URI", "postgres://u:p@db/press")
	t.Setenv("SESSION_SECRET", strings.Repeat("s", 32))
	t.Setenv("ADMIN_USERNAME", "editor")
	t.Setenv("ADMIN_PASSWORD", "$2a$10$abcdefghijklmnopqrstuv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.IsDev() {
		t.Error("IsDev() = true in production")
	}
}

func TestValidate_ShortSecretInProduction(t *testing.T) {
	cfg := &Config{
		Env:           "production",
		DatabaseURI:   "mongodb://localhost",
		SessionSecret: "short",
		AdminUsername: "admin",
		AdminPassword: "pw",
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "32 characters") {
		t.Errorf("Validate() = %v, want secret length error", err)
	}
}
