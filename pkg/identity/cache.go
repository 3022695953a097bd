package identity

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeySetCache stores raw JWKS documents keyed by issuer.
type KeySetCache interface {
	Get(ctx context.Context, issuer string) (json.RawMessage, bool, error)
	Set(ctx context.Context, issuer string, keySet json.RawMessage, ttl time.Duration) error
}

type memoryEntry struct {
	keySet    json.RawMessage
	expiresAt time.Time
}

// MemoryCache is a process-local KeySetCache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, issuer string) (json.RawMessage, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[issuer]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, issuer)
		return nil, false, nil
	}
	return entry.keySet, true, nil
}

func (c *MemoryCache) Set(_ context.Context, issuer string, keySet json.RawMessage, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[issuer] = memoryEntry{keySet: keySet, expiresAt: c.now().Add(ttl)}
	return nil
}

// RedisCache shares key sets between API instances.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "jwks:"}
}

func (c *RedisCache) key(issuer string) string {
	return c.prefix + issuer
}

func (c *RedisCache) Get(ctx context.Context, issuer string) (json.RawMessage, bool, error) {
	val, err := c.client.Get(ctx, c.key(issuer)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return json.RawMessage(val), true, nil
}

func (c *RedisCache) Set(ctx context.Context, issuer string, keySet json.RawMessage, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(issuer), []byte(keySet), ttl).Err()
}
