package session

import (
	"context"
	"time"

	"github.com/mentorexpress/mentorexpress-web/config"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps records in process memory. It is only suitable for a single replica.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a memory store whose entries default to defaultTTL
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(defaultTTL, 10*time.Minute),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	data, found := s.cache.Get(key)
	if !found {
		return nil, notFound(key)
	}
	value, ok := data.([]byte)
	if !ok {
		s.cache.Delete(key)
		return nil, notFound(key)
	}
	return append([]byte(nil), value...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.cache.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s.cache.Delete(key)
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) Name() string {
	return config.SessionStoreMemory
}

// Len returns the number of live entries
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}
