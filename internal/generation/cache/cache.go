// internal/generation/cache/cache.go
package cache

import (
	"context"
	"time"

	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/common/metrics"
	"contractgen-workers/internal/models"
)

// Entry is one cached generation result together with the metadata needed to
// decide, at read time, whether it is still servable.
type Entry struct {
	Fingerprint        string                  `json:"fingerprint"`
	Result             models.GenerationResult `json:"result"`
	CreatedAt          time.Time               `json:"createdAt"`
	DependencyVersions map[string]string       `json:"dependencyVersions"`
}

// Status classifies a cached entry at read time.
type Status string

const (
	// StatusValid entries are servable as-is.
	StatusValid Status = "valid"
	// StatusExpired entries outlived the TTL.
	StatusExpired Status = "expired"
	// StatusOutdated entries were produced against dependency versions that
	// no longer match the current ones.
	StatusOutdated Status = "outdated"
)

// ComputeStatus decides an entry's status from its age and recorded
// dependency versions. Pure function: the same inputs always classify the
// same way, and nothing is mutated.
func ComputeStatus(e Entry, now time.Time, ttl time.Duration, currentVersions map[string]string) Status {
	if ttl > 0 && now.Sub(e.CreatedAt) > ttl {
		return StatusExpired
	}
	for dep, current := range currentVersions {
		if e.DependencyVersions[dep] != current {
			return StatusOutdated
		}
	}
	return StatusValid
}

// VersionSource reports the current version of a tracked dependency. The
// static implementation reads pinned config values; a dynamic one could ask a
// registry.
type VersionSource interface {
	CurrentVersions(ctx context.Context) (map[string]string, error)
}

// StaticVersions is a VersionSource over a fixed map.
type StaticVersions map[string]string

func (s StaticVersions) CurrentVersions(ctx context.Context) (map[string]string, error) {
	return s, nil
}

// ResultCache fronts a Store with TTL and lazy dependency invalidation.
// Invalid entries are evicted on the read path, never by a sweeper.
type ResultCache struct {
	store    Store
	versions VersionSource
	ttl      time.Duration
	log      logger.Logger
	now      func() time.Time
}

func NewResultCache(store Store, versions VersionSource, ttl time.Duration, log logger.Logger) *ResultCache {
	if versions == nil {
		versions = StaticVersions(nil)
	}
	return &ResultCache{
		store:    store,
		versions: versions,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// Lookup returns the cached result for a fingerprint if, and only if, the
// entry is still valid. Expired and outdated entries are deleted in passing.
// When the current dependency versions cannot be determined the entry is
// treated as unservable rather than risking a stale artifact.
func (c *ResultCache) Lookup(ctx context.Context, fingerprint string) (*models.GenerationResult, bool) {
	entry, found, err := c.store.Get(ctx, fingerprint)
	if err != nil {
		c.log.WithError(err).Warn("cache lookup failed, treating as miss", map[string]interface{}{
			"fingerprint": fingerprint,
		})
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	if !found {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	current, err := c.versions.CurrentVersions(ctx)
	if err != nil {
		c.log.WithError(err).Warn("dependency version lookup failed, discarding cache entry", map[string]interface{}{
			"fingerprint": fingerprint,
		})
		c.evict(ctx, fingerprint)
		metrics.CacheLookups.WithLabelValues("outdated").Inc()
		return nil, false
	}

	switch status := ComputeStatus(entry, c.now(), c.ttl, current); status {
	case StatusValid:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		result := entry.Result
		result.FromCache = true
		return &result, true
	default:
		c.evict(ctx, fingerprint)
		metrics.CacheLookups.WithLabelValues(string(status)).Inc()
		return nil, false
	}
}

// Save records a fresh result under its fingerprint, stamping the dependency
// versions it was produced against. Failures are logged, not propagated: a
// broken cache must not fail a generation that already succeeded.
func (c *ResultCache) Save(ctx context.Context, fingerprint string, result models.GenerationResult) {
	current, err := c.versions.CurrentVersions(ctx)
	if err != nil {
		c.log.WithError(err).Warn("dependency version lookup failed, skipping cache write", nil)
		return
	}

	versions := make(map[string]string, len(current))
	for k, v := range current {
		versions[k] = v
	}

	// Never persist the read-path marker.
	result.FromCache = false

	entry := Entry{
		Fingerprint:        fingerprint,
		Result:             result,
		CreatedAt:          c.now(),
		DependencyVersions: versions,
	}
	if err := c.store.Put(ctx, entry, c.ttl); err != nil {
		c.log.WithError(err).Warn("cache write failed", map[string]interface{}{
			"fingerprint": fingerprint,
		})
	}
}

func (c *ResultCache) evict(ctx context.Context, fingerprint string) {
	if err := c.store.Delete(ctx, fingerprint); err != nil {
		c.log.WithError(err).Warn("cache eviction failed", map[string]interface{}{
			"fingerprint": fingerprint,
		})
	}
}
