package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("PGHOST", "localhost")
	t.Setenv("PGUSER", "amigo")
	t.Setenv("PGPASSWORD", "secret")
	t.Setenv("PGDATABASE", "amigo")
	t.Setenv("PGSSLMODE", "disable")
	t.Setenv("SECRET_KEY", "test-secret-key-32bytes-long!!!!")
	t.Setenv("ALGORITHM", "HS256")
}

func TestLoad_AllRequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.PGHost != "localhost" {
		t.Errorf("PGHost = %q, want %q", cfg.PGHost, "localhost")
	}
	if cfg.PGUser != "amigo" {
		t.Errorf("PGUser = %q, want %q", cfg.PGUser, "amigo")
	}
	if cfg.PGPassword != "secret" {
		t.Errorf("PGPassword = %q, want %q", cfg.PGPassword, "secret")
	}
	if cfg.PGDatabase != "amigo" {
		t.Errorf("PGDatabase = %q, want %q", cfg.PGDatabase, "amigo")
	}
	if cfg.PGSSLMode != "disable" {
		t.Errorf("PGSSLMode = %q, want %q", cfg.PGSSLMode, "disable")
	}
	if cfg.SecretKey != "test-secret-key-32bytes-long!!!!" {
		t.Errorf("SecretKey = %q, want %q", cfg.SecretKey, "test-secret-key-32bytes-long!!!!")
	}
	if cfg.Algorithm != "HS256" {
		t.Errorf("Algorithm = %q, want %q", cfg.Algorithm, "HS256")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.TokenTTL != 120*time.Minute {
		t.Errorf("TokenTTL = %v, want %v", cfg.TokenTTL, 120*time.Minute)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 120)
	}
	if cfg.RateLimitRegister != 10 {
		t.Errorf("RateLimitRegister = %d, want %d", cfg.RateLimitRegister, 10)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "http://localhost:3000")
	}
}

func TestLoad_OptionalOverrides(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("TOKEN_TTL_MINUTES", "30")
	t.Setenv("RATE_LIMIT_GENERAL", "240")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("TokenTTL = %v, want %v", cfg.TokenTTL, 30*time.Minute)
	}
	if cfg.RateLimitGeneral != 240 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 240)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "9090")
	}
}

func TestLoad_MissingRequiredVars_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("SECRET_KEY", "")
	t.Setenv("PGHOST", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required vars")
	}

	// 欠けている変数をすべて列挙すること
	if !strings.Contains(err.Error(), "SECRET_KEY") {
		t.Errorf("error should mention SECRET_KEY: %v", err)
	}
	if !strings.Contains(err.Error(), "PGHOST") {
		t.Errorf("error should mention PGHOST: %v", err)
	}
}

func TestDatabaseURL_BuildsPostgresURL(t *testing.T) {
	cfg := &Config{
		PGHost:     "db.example.com",
		PGUser:     "amigo",
		PGPassword: "p@ss/word",
		PGDatabase: "clinic",
		PGSSLMode:  "require",
	}

	url := cfg.DatabaseURL()

	if !strings.HasPrefix(url, "postgres://") {
		t.Errorf("URL should start with postgres://, got %q", url)
	}
	if !strings.Contains(url, "db.example.com") {
		t.Errorf("URL should contain host, got %q", url)
	}
	if !strings.Contains(url, "sslmode=require") {
		t.Errorf("URL should contain sslmode, got %q", url)
	}
	// パスワードの特殊文字がエスケープされること
	if strings.Contains(url, "p@ss/word") {
		t.Errorf("password should be escaped in URL, got %q", url)
	}
}
