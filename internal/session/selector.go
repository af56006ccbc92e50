package session

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingTimeout はRedis疎通確認のタイムアウト。
const pingTimeout = 5 * time.Second

// StoreConfig はバックエンド選択に必要な設定を保持する。
type StoreConfig struct {
	RedisURL        string
	Production      bool
	JanitorInterval time.Duration
}

// NewBackend は設定に応じてセッションバックエンドを選択する。
// 本番環境かつRedisURLが設定されている場合はTLS必須でRedisに接続し、
// 接続できなければログを出してメモリバックエンドにフォールバックする。
// 起動を失敗させることはない。
func NewBackend(ctx context.Context, cfg StoreConfig, logger *slog.Logger) Backend {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.RedisURL == "" || !cfg.Production {
		logger.Info("using in-memory session store")
		return NewMemoryBackend(cfg.JanitorInterval)
	}

	opts, err := redisOptions(cfg.RedisURL)
	if err != nil {
		logger.Error("invalid redis url, falling back to in-memory session store",
			slog.String("error", err.Error()),
		)
		return NewMemoryBackend(cfg.JanitorInterval)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("failed to connect to redis, falling back to in-memory session store",
			slog.String("error", err.Error()),
		)
		_ = client.Close()
		return NewMemoryBackend(cfg.JanitorInterval)
	}

	logger.Info("connected to redis", slog.String("addr", opts.Addr))
	return NewRedisBackend(client)
}

// redisOptions はURLを解析し、TLS(1.2以上)を強制したクライアント設定を返す。
func redisOptions(rawURL string) (*redis.Options, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if opts.TLSConfig == nil {
		opts.TLSConfig = &tls.Config{}
	}
	if opts.TLSConfig.ServerName == "" {
		if host, _, err := net.SplitHostPort(opts.Addr); err == nil {
			opts.TLSConfig.ServerName = host
		}
	}
	if opts.TLSConfig.MinVersion < tls.VersionTLS12 {
		opts.TLSConfig.MinVersion = tls.VersionTLS12
	}
	return opts, nil
}
