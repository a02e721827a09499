package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// Cache holds exactly one ParameterSet.
type Cache interface {
	Get(ctx context.Context) (*report.ParameterSet, error)
	Put(ctx context.Context, set *report.ParameterSet) error
	Clear(ctx context.Context) error
}

// MemoryCache keeps the entry in process.
type MemoryCache struct {
	set *report.ParameterSet
}

func (m *MemoryCache) Get(context.Context) (*report.ParameterSet, error) { return m.set, nil }

func (m *MemoryCache) Put(_ context.Context, set *report.ParameterSet) error {
	m.set = set
	return nil
}

func (m *MemoryCache) Clear(context.Context) error {
	m.set = nil
	return nil
}

// RedisCache stores one session's entry under its own key so any API replica
// can serve the session.
type RedisCache struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRedisCache creates a cache for sessionID. A zero ttl never expires.
func NewRedisCache(client redis.Cmdable, sessionID string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, key: fmt.Sprintf("reportprompt:session:%s", sessionID), ttl: ttl}
}

// Key returns the redis key of the entry.
func (r *RedisCache) Key() string { return r.key }

func (r *RedisCache) Get(ctx context.Context) (*report.ParameterSet, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis session get: %w", err)
	}
	var set report.ParameterSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("redis session decode: %w", err)
	}
	return &set, nil
}

func (r *RedisCache) Put(ctx context.Context, set *report.ParameterSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("redis session encode: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis session put: %w", err)
	}
	return nil
}

func (r *RedisCache) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis session clear: %w", err)
	}
	return nil
}
