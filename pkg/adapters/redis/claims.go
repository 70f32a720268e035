package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// Claims implements ports.Claimer using Redis SET NX PX.
type Claims struct {
	client *backend.Client
	prefix string
}

// NewClaims creates a claimer storing keys under <prefix>claim:.
func NewClaims(client *backend.Client, opts ...Option) *Claims {
	o := buildOptions(opts)
	return &Claims{
		client: client,
		prefix: o.prefix + "claim:",
	}
}

// Claim returns true for the first caller of key until ttl expires.
func (c *Claims) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	val := strconv.FormatInt(time.Now().UnixNano(), 10)
	ok, err := c.client.SetNX(ctx, c.prefix+key, val, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis error claiming %q: %w", key, err)
	}
	return ok, nil
}
