package cache

import (
	"context"
	"errors"
	"time"

	"github.com/checkfix-tools/surveypulse_backend/internal/logger"
	"github.com/checkfix-tools/surveypulse_backend/internal/metrics"
)

// TieredCache reads and writes a shared primary cache and falls back to an in-process
// cache whenever the primary fails. Its methods never return backend errors.
// #IMPLEMENTATION_DECISION: The fallback is written only when the primary is down, so a healthy
// deployment never serves an instance-local value that another instance already invalidated
type TieredCache struct {
	primary  Cache
	fallback Cache
	log      *logger.Logger
}

// NewTieredCache combines an optional primary with a fallback; primary may be nil
func NewTieredCache(primary Cache, fallback Cache, log *logger.Logger) *TieredCache {
	if log == nil {
		log = logger.NewNop()
	}
	return &TieredCache{
		primary:  primary,
		fallback: fallback,
		log:      log.With("component", "cache"),
	}
}

// Name identifies the active backends
func (c *TieredCache) Name() string {
	if c.primary == nil {
		return c.fallback.Name()
	}
	return c.primary.Name() + "+" + c.fallback.Name()
}

// Get reads the primary, then the fallback when the primary errors
func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.primary != nil {
		data, ok, err := c.primary.Get(ctx, key)
		if err == nil {
			metrics.ObserveCacheLookup(c.primary.Name(), hitOrMiss(ok))
			return data, ok, nil
		}
		metrics.ObserveCacheLookup(c.primary.Name(), metrics.CacheError)
		c.log.Warn("primary cache read failed, using fallback", "key", key, "error", err)
	}

	data, ok, err := c.fallback.Get(ctx, key)
	if err != nil {
		metrics.ObserveCacheLookup(c.fallback.Name(), metrics.CacheError)
		c.log.Warn("fallback cache read failed", "key", key, "error", err)
		return nil, false, nil
	}
	metrics.ObserveCacheLookup(c.fallback.Name(), hitOrMiss(ok))
	return data, ok, nil
}

// Set writes the primary, or the fallback when the primary errors
func (c *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.primary != nil {
		err := c.primary.Set(ctx, key, value, ttl)
		if err == nil {
			return nil
		}
		c.log.Warn("primary cache write failed, using fallback", "key", key, "error", err)
	}
	if err := c.fallback.Set(ctx, key, value, ttl); err != nil {
		c.log.Warn("fallback cache write failed", "key", key, "error", err)
	}
	return nil
}

// DeletePrefix invalidates both tiers
func (c *TieredCache) DeletePrefix(ctx context.Context, prefix string) error {
	if c.primary != nil {
		if err := c.primary.DeletePrefix(ctx, prefix); err != nil {
			c.log.Warn("primary cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
	if err := c.fallback.DeletePrefix(ctx, prefix); err != nil {
		c.log.Warn("fallback cache invalidation failed", "prefix", prefix, "error", err)
	}
	return nil
}

// Ping reports the primary's health; the fallback is always considered available
func (c *TieredCache) Ping(ctx context.Context) error {
	if c.primary == nil {
		return c.fallback.Ping(ctx)
	}
	return c.primary.Ping(ctx)
}

// HasPrimary reports whether a shared cache is configured
func (c *TieredCache) HasPrimary() bool {
	return c.primary != nil
}

// Close closes both tiers
func (c *TieredCache) Close() error {
	var errs []error
	if c.primary != nil {
		errs = append(errs, c.primary.Close())
	}
	errs = append(errs, c.fallback.Close())
	return errors.Join(errs...)
}

func hitOrMiss(ok bool) string {
	if ok {
		return metrics.CacheHit
	}
	return metrics.CacheMiss
}

var _ Cache = (*TieredCache)(nil)
