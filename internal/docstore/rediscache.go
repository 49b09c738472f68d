package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisDocKeyPrefix = "docstore:doc:"

// RedisCache is a read-through cache in front of another Store. Documents are
// immutable (content-addressed), so cached entries never go stale; the TTL
// only bounds memory.
type RedisCache struct {
	client *redis.Client
	inner  Store
	ttl    time.Duration
}

// NewRedisCache wraps inner with a Redis read-through cache.
func NewRedisCache(client *redis.Client, inner Store, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, inner: inner, ttl: ttl}
}

func (c *RedisCache) Put(ctx context.Context, doc any) (Handle, error) {
	handle, err := c.inner.Put(ctx, doc)
	if err != nil {
		return "", err
	}
	payload, err := c.inner.Get(ctx, handle)
	if err != nil {
		return "", fmt.Errorf("read back document %s: %w", handle, err)
	}
	// Cache population is best effort; the inner store already holds the doc.
	_ = c.client.Set(ctx, redisDocKeyPrefix+handle.String(), []byte(payload), c.ttl).Err()
	return handle, nil
}

func (c *RedisCache) Get(ctx context.Context, handle Handle) (json.RawMessage, error) {
	data, err := c.client.Get(ctx, redisDocKeyPrefix+handle.String()).Bytes()
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("docstore cache read: %w", err)
	}

	payload, err := c.inner.Get(ctx, handle)
	if err != nil {
		return nil, err
	}
	_ = c.client.Set(ctx, redisDocKeyPrefix+handle.String(), []byte(payload), c.ttl).Err()
	return payload, nil
}
