package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mentorexpress/mentorexpress-web/config"
	"github.com/mentorexpress/mentorexpress-web/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "mentorexpress:"

// RedisClient is the subset of redis.Cmdable used by RedisStore
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisStore shares records between replicas through redis
type RedisStore struct {
	client RedisClient
}

// NewRedisStore creates a redis-backed store
func NewRedisStore(client RedisClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(key)
	}
	if err != nil {
		metrics.SessionStoreErrors.WithLabelValues(config.SessionStoreRedis, "get").Inc()
		return nil, fmt.Errorf("error getting session key %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, ttl).Err(); err != nil {
		metrics.SessionStoreErrors.WithLabelValues(config.SessionStoreRedis, "set").Inc()
		return fmt.Errorf("error saving session key %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = redisKeyPrefix + key
	}
	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		metrics.SessionStoreErrors.WithLabelValues(config.SessionStoreRedis, "delete").Inc()
		return fmt.Errorf("error deleting session keys: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		metrics.SessionStoreErrors.WithLabelValues(config.SessionStoreRedis, "ping").Inc()
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Name() string {
	return config.SessionStoreRedis
}
