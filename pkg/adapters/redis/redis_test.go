package redis_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goodcast/goodapi/pkg/adapters/redis"
	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/goodcast/goodapi/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRecentEvents_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunRecentEventsContract(t, redis.NewRecentEvents(client, 4), 4)
}

func TestRecentEvents_Prefix(t *testing.T) {
	mr, client := setup(t)

	recent := redis.NewRecentEvents(client, 10, redis.WithPrefix("custom:app:"))
	err := recent.Push(context.Background(), &domain.Event{Name: "Pageview"})
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:leafwatch:recent"), "Expected list with custom prefix to exist")
}

func TestClaims_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunClaimerContract(t, redis.NewClaims(client))
}

func TestClaims_Expire(t *testing.T) {
	mr, client := setup(t)
	claims := redis.NewClaims(client)
	ctx := context.Background()

	ok, err := claims.Claim(ctx, "0xabc", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = claims.Claim(ctx, "0xabc", time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "claim should be available again after ttl")
}

type countingLocator struct {
	calls atomic.Int32
	loc   *domain.Location
	delay time.Duration
}

func (c *countingLocator) Locate(ctx context.Context, ip string) (*domain.Location, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	return c.loc, nil
}

func TestGeoCache_HitAndExpiry(t *testing.T) {
	mr, client := setup(t)
	upstream := &countingLocator{loc: &domain.Location{City: "Lisbon", Country: "Portugal", Region: "Lisbon"}}
	cache := redis.NewGeoCache(client, upstream, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		loc, err := cache.Locate(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.Equal(t, "Lisbon", loc.City)
	}
	assert.EqualValues(t, 1, upstream.calls.Load(), "subsequent lookups should hit the cache")
	assert.True(t, mr.Exists("goodapi:geo:203.0.113.7"))

	mr.FastForward(2 * time.Hour)
	_, err := cache.Locate(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.EqualValues(t, 2, upstream.calls.Load())
}

func TestGeoCache_CachesUnknown(t *testing.T) {
	_, client := setup(t)
	upstream := &countingLocator{}
	cache := redis.NewGeoCache(client, upstream, time.Hour)

	for i := 0; i < 2; i++ {
		loc, err := cache.Locate(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.Nil(t, loc)
	}
	assert.EqualValues(t, 1, upstream.calls.Load())
}

func TestGeoCache_CollapsesConcurrentMisses(t *testing.T) {
	_, client := setup(t)
	upstream := &countingLocator{loc: &domain.Location{City: "Oslo"}, delay: 50 * time.Millisecond}
	cache := redis.NewGeoCache(client, upstream, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loc, err := cache.Locate(context.Background(), "198.51.100.2")
			assert.NoError(t, err)
			assert.Equal(t, "Oslo", loc.City)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, upstream.calls.Load(), int32(2))
}
