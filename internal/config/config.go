// Package config は環境変数からのアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	PGHost     string
	PGUser     string
	PGPassword string
	PGDatabase string
	PGSSLMode  string

	// Token
	SecretKey string
	Algorithm string
	TokenTTL  time.Duration

	// Rate Limit
	RateLimitGeneral  int
	RateLimitRegister int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す（遅延失敗ではなく起動時に失敗させる）。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.PGHost = os.Getenv("PGHOST")
	if cfg.PGHost == "" {
		missing = append(missing, "PGHOST")
	}

	cfg.PGUser = os.Getenv("PGUSER")
	if cfg.PGUser == "" {
		missing = append(missing, "PGUSER")
	}

	cfg.PGPassword = os.Getenv("PGPASSWORD")
	if cfg.PGPassword == "" {
		missing = append(missing, "PGPASSWORD")
	}

	cfg.PGDatabase = os.Getenv("PGDATABASE")
	if cfg.PGDatabase == "" {
		missing = append(missing, "PGDATABASE")
	}

	cfg.PGSSLMode = os.Getenv("PGSSLMODE")
	if cfg.PGSSLMode == "" {
		missing = append(missing, "PGSSLMODE")
	}

	cfg.SecretKey = os.Getenv("SECRET_KEY")
	if cfg.SecretKey == "" {
		missing = append(missing, "SECRET_KEY")
	}

	cfg.Algorithm = os.Getenv("ALGORITHM")
	if cfg.Algorithm == "" {
		missing = append(missing, "ALGORITHM")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TokenTTL = time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 120)) * time.Minute
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitRegister = getEnvInt("RATE_LIMIT_REGISTER", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// DatabaseURL は接続パラメータからPostgreSQLの接続URLを構築して返す。
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PGUser, c.PGPassword),
		Host:     c.PGHost,
		Path:     "/" + c.PGDatabase,
		RawQuery: "sslmode=" + url.QueryEscape(c.PGSSLMode),
	}
	return u.String()
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
