package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*InMemoryCache, *time.Time) {
	t.Helper()
	c := NewInMemoryCache(ttl)
	t.Cleanup(c.Close)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestSeenFlagsRepeatWithinWindow(t *testing.T) {
	c, now := newTestCache(t, 10*time.Minute)
	ctx := context.Background()

	assert.False(t, c.Seen(ctx, "a@b.com"))
	assert.True(t, c.Seen(ctx, "a@b.com"))
	assert.True(t, c.Seen(ctx, " A@B.com"))
	assert.False(t, c.Seen(ctx, "other@b.com"))

	*now = now.Add(11 * time.Minute)
	assert.False(t, c.Seen(ctx, "a@b.com"))
}

func TestSeenExtendsWindow(t *testing.T) {
	c, now := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.Seen(ctx, "a@b.com")
	*now = now.Add(50 * time.Second)
	assert.True(t, c.Seen(ctx, "a@b.com"))
	*now = now.Add(50 * time.Second)
	assert.True(t, c.Seen(ctx, "a@b.com"))
}

func TestEvictExpired(t *testing.T) {
	c, now := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.Seen(ctx, "a@b.com")
	c.Seen(ctx, "c@d.com")
	require.Equal(t, 2, c.Len())

	*now = now.Add(2 * time.Minute)
	c.evictExpired()
	assert.Equal(t, 0, c.Len())
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.Seen(ctx, "a@b.com")
	require.NoError(t, c.Clear(ctx))
	assert.False(t, c.Seen(ctx, "a@b.com"))
}

func TestDisabledNeverFlags(t *testing.T) {
	var d Disabled
	ctx := context.Background()

	assert.False(t, d.Seen(ctx, "a@b.com"))
	assert.False(t, d.Seen(ctx, "a@b.com"))
	assert.NoError(t, d.Clear(ctx))
}

func TestGenerateCacheKey(t *testing.T) {
	assert.Equal(t, "subscription:a@b.com", GenerateCacheKey("  A@b.COM "))
}
