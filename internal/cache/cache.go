package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SubmissionTracker remembers which emails were forwarded recently. It only
// flags repeats; it never blocks them.
type SubmissionTracker interface {
	// Seen records email and reports whether it was already recorded within
	// the tracker's window.
	Seen(ctx context.Context, email string) bool
	Clear(ctx context.Context) error
}

type cacheItem struct {
	count    int
	expireAt time.Time
}

type InMemoryCache struct {
	mu     sync.Mutex
	items  map[string]*cacheItem
	ttl    time.Duration
	now    func() time.Time
	tracer trace.Tracer
	stop   chan struct{}
	once   sync.Once
}

func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	cache := &InMemoryCache{
		items:  make(map[string]*cacheItem),
		ttl:    ttl,
		now:    time.Now,
		tracer: otel.Tracer("cache"),
		stop:   make(chan struct{}),
	}

	go cache.cleanup(time.Minute)
	return cache
}

func (c *InMemoryCache) Seen(ctx context.Context, email string) bool {
	key := GenerateCacheKey(email)
	_, span := c.tracer.Start(ctx, "cache.seen",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.String("operation", "cache.write"),
			attribute.String("ttl", c.ttl.String()),
		))
	defer span.End()

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if exists && now.After(item.expireAt) {
		exists = false
	}
	if !exists {
		item = &cacheItem{}
		c.items[key] = item
	}
	item.count++
	item.expireAt = now.Add(c.ttl)

	span.SetAttributes(
		attribute.Bool("cache.hit", exists),
		attribute.Int("cache.count", item.count),
	)
	return exists
}

func (c *InMemoryCache) Clear(ctx context.Context) error {
	_, span := c.tracer.Start(ctx, "cache.clear",
		trace.WithAttributes(
			attribute.String("operation", "cache.write"),
		))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	itemCount := len(c.items)
	c.items = make(map[string]*cacheItem)

	span.SetAttributes(
		attribute.Int("items.cleared", itemCount),
		attribute.Bool("success", true),
	)
	return nil
}

func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Close stops the background eviction loop.
func (c *InMemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *InMemoryCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expireAt) {
			delete(c.items, key)
		}
	}
}

func (c *InMemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

// Disabled is the tracker used when the repeat window is zero.
type Disabled struct{}

func (Disabled) Seen(context.Context, string) bool { return false }

func (Disabled) Clear(context.Context) error { return nil }

// GenerateCacheKey normalizes case and surrounding space so that
// "A@B.com " and "a@b.com" count as the same address.
func GenerateCacheKey(email string) string {
	return fmt.Sprintf("subscription:%s", strings.ToLower(strings.TrimSpace(email)))
}
