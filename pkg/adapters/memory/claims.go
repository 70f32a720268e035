package memory

import (
	"context"
	"sync"
	"time"
)

// claimSweepInterval is how often Claim drops expired keys.
const claimSweepInterval = time.Minute

// Claims implements ports.Claimer for a single process.
type Claims struct {
	mu        sync.Mutex
	claims    map[string]time.Time
	now       func() time.Time
	lastSweep time.Time
}

func NewClaims() *Claims {
	return &Claims{claims: make(map[string]time.Time), now: time.Now}
}

func (c *Claims) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) >= claimSweepInterval {
		for k, exp := range c.claims {
			if !now.Before(exp) {
				delete(c.claims, k)
			}
		}
		c.lastSweep = now
	}

	if exp, ok := c.claims[key]; ok && now.Before(exp) {
		return false, nil
	}
	c.claims[key] = now.Add(ttl)
	return true, nil
}

// Len reports how many keys are currently held, expired or not.
func (c *Claims) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.claims)
}
