package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLayeredCachePromotesWithRemainingTTL(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mem := NewMemoryCache(WithMemoryCleanup(0), WithMemoryClock(clk.Now))
	remote := NewMemoryCache(WithMemoryCleanup(0), WithMemoryClock(clk.Now))
	lc := NewLayeredCache(mem, remote, time.Hour)
	defer lc.Close()
	ctx := context.Background()

	if err := remote.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	clk.Advance(50 * time.Minute)
	if got, err := lc.Get(ctx, "k"); err != nil || string(got) != "v" {
		t.Fatalf("get = %q, %v", got, err)
	}
	left, err := mem.TTL(ctx, "k")
	if err != nil || left != 10*time.Minute {
		t.Fatalf("l1 ttl = %v, %v; want 10m", left, err)
	}

	clk.Advance(11 * time.Minute)
	if _, err := mem.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("l1 outlived the remote entry: %v", err)
	}
}

func TestLayeredCacheWriteThroughAndDelete(t *testing.T) {
	mem := NewMemoryCache(WithMemoryCleanup(0))
	remote := NewMemoryCache(WithMemoryCleanup(0))
	lc := NewLayeredCache(mem, remote, time.Minute)
	defer lc.Close()
	ctx := context.Background()

	if err := lc.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := remote.Get(ctx, "k"); err != nil {
		t.Fatalf("remote missing write: %v", err)
	}
	if err := lc.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := lc.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("get after delete: %v", err)
	}
}
