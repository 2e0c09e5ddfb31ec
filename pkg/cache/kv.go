package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is a thin get/set wrapper hiding redis semantics from services.
// A nil KV is a valid no-op cache.
type KV struct {
	client *redis.Client
}

// NewKV wraps a Redis client. Passing nil yields a disabled cache.
func NewKV(client *redis.Client) *KV {
	if client == nil {
		return nil
	}
	return &KV{client: client}
}

// Get returns the cached value, or "" on a miss. Only real transport
// failures are reported as errors.
func (k *KV) Get(ctx context.Context, key string) (string, error) {
	if k == nil {
		return "", nil
	}
	value, err := k.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// Set stores a value with a TTL.
func (k *KV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if k == nil {
		return nil
	}
	return k.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key.
func (k *KV) Delete(ctx context.Context, key string) error {
	if k == nil {
		return nil
	}
	return k.client.Del(ctx, key).Err()
}
