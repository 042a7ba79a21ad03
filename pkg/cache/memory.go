package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value    []byte
	expireAt time.Time
}

// MemoryCache is an in-process Store. Entries leave only by TTL expiry,
// either lazily on read or by the periodic sweep.
type MemoryCache struct {
	mutex         sync.RWMutex
	data          map[string]memoryItem
	now           func() time.Time
	cleanupTicker *time.Ticker
	done          chan struct{}
	closeOnce     sync.Once
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		CleanupInterval: 5 * time.Minute,
		Now:             time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		data: make(map[string]memoryItem),
		now:  cfg.Now,
		done: make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		mc.cleanupTicker = time.NewTicker(cfg.CleanupInterval)
		go mc.cleanupExpired()
	}
	return mc
}

func (mc *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	mc.mutex.RLock()
	item, ok := mc.data[key]
	mc.mutex.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !mc.now().Before(item.expireAt) {
		mc.mutex.Lock()
		if cur, still := mc.data[key]; still && !mc.now().Before(cur.expireAt) {
			delete(mc.data, key)
		}
		mc.mutex.Unlock()
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

func (mc *MemoryCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	if expiration <= 0 {
		return nil
	}
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.data[key] = memoryItem{value: value, expireAt: mc.now().Add(expiration)}
	return nil
}

// TTL reports the remaining lifetime of key.
func (mc *MemoryCache) TTL(_ context.Context, key string) (time.Duration, error) {
	mc.mutex.RLock()
	item, ok := mc.data[key]
	mc.mutex.RUnlock()

	if !ok {
		return 0, ErrCacheMiss
	}
	left := item.expireAt.Sub(mc.now())
	if left <= 0 {
		return 0, ErrCacheMiss
	}
	return left, nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	for _, key := range keys {
		delete(mc.data, key)
	}
	return nil
}

// Len reports the number of stored entries, expired or not.
func (mc *MemoryCache) Len() int {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()
	return len(mc.data)
}

// Sweep removes every expired entry and returns how many were dropped.
func (mc *MemoryCache) Sweep() int {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	now := mc.now()
	removed := 0
	for key, item := range mc.data {
		if !now.Before(item.expireAt) {
			delete(mc.data, key)
			removed++
		}
	}
	return removed
}

func (mc *MemoryCache) cleanupExpired() {
	for {
		select {
		case <-mc.cleanupTicker.C:
			mc.Sweep()
		case <-mc.done:
			return
		}
	}
}

// Close stops the cleanup goroutine.
func (mc *MemoryCache) Close() error {
	mc.closeOnce.Do(func() {
		if mc.cleanupTicker != nil {
			mc.cleanupTicker.Stop()
		}
		close(mc.done)
	})
	return nil
}
