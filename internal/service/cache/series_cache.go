package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PeerBench/internal/domain/models"
	"PeerBench/internal/domain/repository"
	"PeerBench/internal/service/synthetic"
	pkgcache "PeerBench/pkg/cache"
	applogger "PeerBench/pkg/logger"

	"golang.org/x/sync/singleflight"
)

const (
	EventHit      = "hit"
	EventMiss     = "miss"
	EventShared   = "shared"
	EventFallback = "fallback"
)

// Options tune the series cache.
type Options struct {
	TTL time.Duration
	// FallbackTTL is how long synthetic data is kept. Zero means the next
	// request tries the API again.
	FallbackTTL time.Duration
	// Fallback is nil when synthetic substitution is disabled.
	Fallback *synthetic.Generator
	// FetchTimeout bounds a shared fetch. It runs apart from any one
	// caller's context, so a cancelled caller does not fail the others.
	FetchTimeout time.Duration
}

// SeriesCache memoises institution fetches in a byte store. Concurrent
// misses for one key share a single fetch.
type SeriesCache struct {
	store   pkgcache.Store
	opts    Options
	group   singleflight.Group
	log     *applogger.Logger
	metrics repository.Metrics
}

func NewSeriesCache(store pkgcache.Store, opts Options, l *applogger.Logger, m repository.Metrics) *SeriesCache {
	if l == nil {
		l = applogger.Nop()
	}
	return &SeriesCache{store: store, opts: opts, log: l, metrics: m}
}

// StoreKey is the backing-store key for a series key.
func StoreKey(key models.SeriesKey) string {
	return pkgcache.Key("series", key.InstitutionID, pkgcache.Digest(key.String()))
}

// GetOrFetch serves key from the store or runs fetch. With fallback enabled
// a failed fetch yields synthetic data instead of an error.
func (c *SeriesCache) GetOrFetch(ctx context.Context, key models.SeriesKey, fetch repository.FetchFunc) (models.InstitutionData, error) {
	k := StoreKey(key)

	if data, ok := c.lookup(ctx, k); ok {
		c.record(EventHit)
		c.log.Debug("series cache hit", applogger.String("key", key.String()))
		return data, nil
	}

	ch := c.group.DoChan(k, func() (interface{}, error) {
		c.record(EventMiss)
		fctx, cancel := c.detach(ctx)
		defer cancel()
		return c.fill(fctx, k, key, fetch)
	})

	select {
	case <-ctx.Done():
		return models.InstitutionData{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.record(EventShared)
		}
		if res.Err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return models.InstitutionData{}, ctxErr
			}
			return models.InstitutionData{}, res.Err
		}
		return res.Val.(models.InstitutionData), nil
	}
}

// detach keeps the caller's values but drops its cancellation.
func (c *SeriesCache) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if c.opts.FetchTimeout > 0 {
		return context.WithTimeout(base, c.opts.FetchTimeout)
	}
	return context.WithCancel(base)
}

// Invalidate drops any cached entry for key.
func (c *SeriesCache) Invalidate(ctx context.Context, key models.SeriesKey) error {
	return c.store.Delete(ctx, StoreKey(key))
}

func (c *SeriesCache) lookup(ctx context.Context, k string) (models.InstitutionData, bool) {
	data, err := pkgcache.GetJSON[models.InstitutionData](ctx, c.store, k)
	if err == nil {
		return data, true
	}
	if !errors.Is(err, pkgcache.ErrCacheMiss) {
		c.log.Warn("series cache read failed", applogger.String("key", k), applogger.Error(err))
	}
	return models.InstitutionData{}, false
}

func (c *SeriesCache) fill(ctx context.Context, k string, key models.SeriesKey, fetch repository.FetchFunc) (models.InstitutionData, error) {
	data, err := fetch(ctx)
	if err == nil {
		c.save(ctx, k, data, c.opts.TTL)
		return data, nil
	}

	if c.opts.Fallback == nil {
		if errors.Is(err, models.ErrDataUnavailable) {
			return models.InstitutionData{}, err
		}
		return models.InstitutionData{}, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}

	c.record(EventFallback)
	c.log.Warn("fetch failed, serving synthetic data",
		applogger.String("cert", key.InstitutionID),
		applogger.String("start", key.Start.String()),
		applogger.String("end", key.End.String()),
		applogger.Error(err),
	)
	synth := c.opts.Fallback.Generate(key)
	c.save(ctx, k, synth, c.opts.FallbackTTL)
	return synth, nil
}

func (c *SeriesCache) save(ctx context.Context, k string, data models.InstitutionData, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := pkgcache.SetJSON(ctx, c.store, k, data, ttl); err != nil {
		c.log.Warn("series cache write failed", applogger.String("key", k), applogger.Error(err))
	}
}

func (c *SeriesCache) record(event string) {
	if c.metrics != nil {
		c.metrics.RecordCacheEvent(event)
	}
}

var _ repository.SeriesCache = (*SeriesCache)(nil)
