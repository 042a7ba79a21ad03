package cache

import (
	"context"
	"time"
)

// LayeredCache implements two-level cache (L1: Memory, L2: Redis).
type LayeredCache struct {
	memCache *MemoryCache
	remote   Store
	// l1TTL caps how long an L2 hit is kept in memory.
	l1TTL time.Duration
}

// NewLayeredCache creates a layered cache in front of remote.
func NewLayeredCache(mem *MemoryCache, remote Store, l1TTL time.Duration) *LayeredCache {
	return &LayeredCache{memCache: mem, remote: remote, l1TTL: l1TTL}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	// Write-through: remote first, then memory
	if err := lc.remote.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	return lc.memCache.Set(ctx, key, value, expiration)
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, err := lc.memCache.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err := lc.remote.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	_ = lc.memCache.Set(ctx, key, v, lc.promoteTTL(ctx, key))
	return v, nil
}

// promoteTTL keeps an L2 hit in memory no longer than it has left in L2.
func (lc *LayeredCache) promoteTTL(ctx context.Context, key string) time.Duration {
	e, ok := lc.remote.(Expirer)
	if !ok {
		return lc.l1TTL
	}
	left, err := e.TTL(ctx, key)
	if err != nil {
		return 0
	}
	if left > 0 && left < lc.l1TTL {
		return left
	}
	return lc.l1TTL
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.remote.Delete(ctx, keys...)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	return lc.remote.Close()
}
