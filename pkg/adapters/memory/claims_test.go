package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaims_DedupeWithinTTL(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewClaims()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := c.Claim(ctx, "0xhash", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = c.Claim(ctx, "0xhash", time.Hour)
	assert.False(t, ok)

	now = now.Add(time.Hour)
	ok, _ = c.Claim(ctx, "0xhash", time.Hour)
	assert.True(t, ok, "claim is free again once expired")
}

func TestClaims_SweepsExpiredKeys(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewClaims()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		_, err := c.Claim(ctx, fmt.Sprintf("0x%d", i), time.Second)
		require.NoError(t, err)
	}
	assert.Equal(t, 500, c.Len())

	now = now.Add(2 * claimSweepInterval)
	ok, err := c.Claim(ctx, "0xlive", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}
