package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/goodcast/goodapi/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// GeoCache wraps a GeoLocator with a Redis cache.
// Concurrent misses for one address share a single upstream lookup.
type GeoCache struct {
	client *backend.Client
	next   ports.GeoLocator
	prefix string
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewGeoCache caches results of next for ttl.
func NewGeoCache(client *backend.Client, next ports.GeoLocator, ttl time.Duration, opts ...Option) *GeoCache {
	o := buildOptions(opts)
	return &GeoCache{
		client: client,
		next:   next,
		prefix: o.prefix + "geo:",
		ttl:    ttl,
		logger: o.logger,
	}
}

// Locate serves from cache, falling back to the wrapped locator.
// Unplaceable addresses are cached too, as JSON null.
func (g *GeoCache) Locate(ctx context.Context, ip string) (*domain.Location, error) {
	key := g.prefix + ip

	val, err := g.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var loc *domain.Location
		if err := json.Unmarshal([]byte(val), &loc); err == nil {
			return loc, nil
		}
		g.logger.Warn("Discarding corrupt geo cache entry", "ip", ip)
	case err != backend.Nil:
		g.logger.Warn("Geo cache read failed", "ip", ip, "err", err)
	}

	v, err, _ := g.group.Do(ip, func() (any, error) {
		loc, err := g.next.Locate(ctx, ip)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(loc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal location: %w", err)
		}
		if err := g.client.Set(ctx, key, data, g.ttl).Err(); err != nil {
			g.logger.Warn("Geo cache write failed", "ip", ip, "err", err)
		}
		return loc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Location), nil
}
