package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/zywangzy/fun-with-flags/internal/repository"
)

const defaultSessionKeyPrefix = "fwf:session"

// SessionCache implements port.SessionCache on Redis. Keys are token jtis;
// values are the "login"/"logout" status strings.
type SessionCache struct {
	client *red.Client
	prefix string
}

// NewSessionCache wires a Redis-backed session cache.
func NewSessionCache(client *red.Client, prefix string) *SessionCache {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		trimmed = defaultSessionKeyPrefix
	}
	return &SessionCache{client: client, prefix: trimmed}
}

// Set writes the status for a key. A non-positive ttl stores the entry
// without expiry.
func (c *SessionCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("session cache: key is required")
	}

	if ttl < 0 {
		ttl = 0
	}

	if err := c.client.Set(ctx, c.storageKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session status: %w", err)
	}

	return nil
}

// Get returns the stored status, or repository.ErrNotFound when the key is
// absent or evicted.
func (c *SessionCache) Get(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("session cache: key is required")
	}

	value, err := c.client.Get(ctx, c.storageKey(key)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("redis get session status: %w", err)
	}

	return value, nil
}

func (c *SessionCache) storageKey(key string) string {
	return c.prefix + ":" + key
}
