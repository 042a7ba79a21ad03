package cache

import (
	"context"
	"errors"
	"time"

	"PeerBench/internal/domain/models"
	"PeerBench/internal/domain/repository"
	pkgcache "PeerBench/pkg/cache"
	applogger "PeerBench/pkg/logger"
)

// InstitutionCache memoises registered names for certificates outside the
// roster. Failed lookups are not stored.
type InstitutionCache struct {
	store  pkgcache.Store
	lookup repository.InstitutionLookup
	ttl    time.Duration
	log    *applogger.Logger
}

func NewInstitutionCache(store pkgcache.Store, lookup repository.InstitutionLookup, ttl time.Duration, l *applogger.Logger) *InstitutionCache {
	if l == nil {
		l = applogger.Nop()
	}
	return &InstitutionCache{store: store, lookup: lookup, ttl: ttl, log: l}
}

func (c *InstitutionCache) LookupInstitution(ctx context.Context, institutionID string) (models.Institution, error) {
	k := pkgcache.Key("institution", institutionID)

	inst, err := pkgcache.GetJSON[models.Institution](ctx, c.store, k)
	if err == nil {
		return inst, nil
	}
	if !errors.Is(err, pkgcache.ErrCacheMiss) {
		c.log.Warn("institution cache read failed", applogger.String("key", k), applogger.Error(err))
	}

	inst, err = c.lookup.LookupInstitution(ctx, institutionID)
	if err != nil {
		return models.Institution{}, err
	}
	if err := pkgcache.SetJSON(ctx, c.store, k, inst, c.ttl); err != nil {
		c.log.Warn("institution cache write failed", applogger.String("key", k), applogger.Error(err))
	}
	return inst, nil
}

var _ repository.InstitutionLookup = (*InstitutionCache)(nil)
