// Package session holds the server-side storage that backs browser hand-off
// records, addressed by the ids carried in signed cookies.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/mentorexpress/mentorexpress-web/config"
	apperrors "github.com/mentorexpress/mentorexpress-web/pkg/errors"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is a TTL key/value store. Get returns an error wrapping
// apperrors.ErrNotFound for missing or expired keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Name() string
}

// NewStore builds the store selected by SESSION_STORE
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("Session store initialized",
			zap.String("store", config.SessionStoreRedis),
			zap.String("addr", cfg.Redis.Addr),
			zap.Int("db", cfg.Redis.DB))
		return NewRedisStore(client), nil
	case config.SessionStoreMemory:
		logger.Info("Session store initialized", zap.String("store", config.SessionStoreMemory))
		return NewMemoryStore(cfg.SessionTTL()), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

func notFound(key string) error {
	return fmt.Errorf("session key %s: %w", key, apperrors.ErrNotFound)
}
