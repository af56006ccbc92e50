package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/shopfront/internal/model"
)

const redisKeyPrefix = "session:"

// RedisBackend はRedisにセッションをJSONで保持するバックエンド。
// キーのTTLはセッションの残り有効期間に合わせる。
type RedisBackend struct {
	client  *redis.Client
	nowFunc func() time.Time
}

// NewRedisBackend は接続済みクライアントからRedisBackendを生成する。
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client, nowFunc: time.Now}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (b *RedisBackend) Load(ctx context.Context, id string) (*model.Session, error) {
	data, err := b.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session from redis: %w", err)
	}

	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.IsExpired(b.nowFunc()) {
		return nil, nil
	}
	return &s, nil
}

func (b *RedisBackend) Save(ctx context.Context, s *model.Session) error {
	ttl := s.ExpiresAt.Sub(b.nowFunc())
	if ttl <= 0 {
		return b.Delete(ctx, s.ID)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := b.client.Set(ctx, redisKey(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	if err := b.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// compile-time interface check
var _ Backend = (*RedisBackend)(nil)
