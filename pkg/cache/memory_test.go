package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryCacheExpiry(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryCleanup(0), WithMemoryClock(clk.Now))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := mc.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("get = %q, %v", got, err)
	}

	clk.Advance(time.Minute)
	if _, err := mc.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after ttl, got %v", err)
	}
	if mc.Len() != 0 {
		t.Fatalf("expired entry not dropped on read, len=%d", mc.Len())
	}
}

func TestMemoryCacheNonPositiveTTLSkipsStore(t *testing.T) {
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()

	_ = mc.Set(context.Background(), "k", []byte("v"), 0)
	if mc.Len() != 0 {
		t.Fatalf("zero ttl should not store")
	}
}

func TestMemoryCacheSweep(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	mc := NewMemoryCache(WithMemoryCleanup(0), WithMemoryClock(clk.Now))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "short", []byte("a"), time.Second)
	_ = mc.Set(ctx, "long", []byte("b"), time.Hour)
	clk.Advance(2 * time.Second)

	if n := mc.Sweep(); n != 1 {
		t.Fatalf("sweep removed %d, want 1", n)
	}
	if _, err := mc.Get(ctx, "long"); err != nil {
		t.Fatalf("long entry lost: %v", err)
	}
}

func TestLayeredCachePromotesRemoteHit(t *testing.T) {
	ctx := context.Background()
	remote := NewMemoryCache(WithMemoryCleanup(0))
	l1 := NewMemoryCache(WithMemoryCleanup(0))
	lc := NewLayeredCache(l1, remote, time.Minute)
	defer lc.Close()

	_ = remote.Set(ctx, "k", []byte("v"), time.Hour)
	if _, err := lc.Get(ctx, "k"); err != nil {
		t.Fatalf("layered get: %v", err)
	}
	if _, err := l1.Get(ctx, "k"); err != nil {
		t.Fatalf("expected l1 promotion, got %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()

	type payload struct{ A int }
	if err := SetJSON(ctx, mc, "p", payload{A: 7}, time.Minute); err != nil {
		t.Fatalf("set json: %v", err)
	}
	got, err := GetJSON[payload](ctx, mc, "p")
	if err != nil || got.A != 7 {
		t.Fatalf("get json = %+v, %v", got, err)
	}
}
