package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvProduction はAPP_ENVの本番値。
const EnvProduction = "production"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`

	// OAuth
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL" envDefault:"http://localhost:5000/auth/google/callback"`

	// Session
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"168h"`
	RedisURL      string        `env:"REDIS_URL"`

	// Environment
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	// CORS / Redirect
	FrontendURL        string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Admin
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// Server
	Port       string `env:"PORT" envDefault:"5000"`
	TrustProxy bool   `env:"TRUST_PROXY" envDefault:"false"`

	// Rate Limit
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"300"`
	RateLimitContact int `env:"RATE_LIMIT_CONTACT" envDefault:"5"`

	// Worker
	CartRetentionDays int `env:"CART_RETENTION_DAYS" envDefault:"30"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合は未設定の変数をすべて列挙したエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"GOOGLE_CLIENT_ID", cfg.GoogleClientID},
		{"GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret},
		{"SESSION_SECRET", cfg.SessionSecret},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if cfg.SessionMaxAge <= 0 {
		return nil, fmt.Errorf("SESSION_MAX_AGE must be positive: %s", cfg.SessionMaxAge)
	}
	if cfg.RateLimitGeneral <= 0 || cfg.RateLimitContact <= 0 {
		return nil, fmt.Errorf("rate limits must be positive: general=%d contact=%d",
			cfg.RateLimitGeneral, cfg.RateLimitContact)
	}
	if cfg.CartRetentionDays <= 0 {
		return nil, fmt.Errorf("CART_RETENTION_DAYS must be positive: %d", cfg.CartRetentionDays)
	}

	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)
	cfg.AdminEmails = trimAll(cfg.AdminEmails)

	return cfg, nil
}

// IsProduction は本番環境で起動しているかを返す。
// 本番ではRedisセッションストア、Secure Cookie、HSTSを有効にする。
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, EnvProduction)
}

// AllowedOrigins はCORSとログイン後リダイレクトで許可するオリジンの一覧を返す。
// FRONTEND_URLは常に含まれる。
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.CORSAllowedOrigins)+1)
	seen := make(map[string]struct{}, len(c.CORSAllowedOrigins)+1)
	for _, o := range append([]string{c.FrontendURL}, c.CORSAllowedOrigins...) {
		o = strings.TrimRight(o, "/")
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		origins = append(origins, o)
	}
	return origins
}

// SlogLevel はLOG_LEVELをslog.Levelに変換する。未知の値はInfoとして扱う。
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
