package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/address-validator/app/models"
	"github.com/address-validator/internal/normalizer"
	"go.uber.org/zap"
)

// CacheStats aggregates cache counters.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// cacheCounters tracks hits and misses for one cache tier. Incremented from
// concurrent request handlers, so the fields are atomic.
type cacheCounters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (c *cacheCounters) hit()  { c.hits.Add(1) }
func (c *cacheCounters) miss() { c.misses.Add(1) }

func (c *cacheCounters) reset() {
	c.hits.Store(0)
	c.misses.Store(0)
}

// snapshot returns the counters plus the derived hit rate.
func (c *cacheCounters) snapshot() (hits, misses int64, hitRate float64) {
	hits = c.hits.Load()
	misses = c.misses.Load()
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return hits, misses, hitRate
}

// ICacheService is the result-cache contract shared by the Redis, MongoDB
// and hybrid implementations.
type ICacheService interface {
	// Get returns a cached validation result for a request key.
	Get(ctx context.Context, key string) (*models.ValidationResult, bool, error)

	// Set stores a validation result under a request key.
	Set(ctx context.Context, key string, result *models.ValidationResult) error

	// Delete removes one entry.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// InvalidateByDatasetVersion drops entries computed against any other
	// dataset version. Called after a dataset reload.
	InvalidateByDatasetVersion(ctx context.Context, datasetVersion string) error

	// GetStats returns cache counters.
	GetStats(ctx context.Context) (*CacheStats, error)

	// Exists reports whether a key is cached.
	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL returns the remaining TTL of a key.
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	// Close releases backing connections where applicable.
	Close() error
}

// SelectCacheService picks the richest cache stack the available backends
// allow: hybrid when both tiers are up, a single tier when only one is, and
// the in-memory TTL cache when neither is reachable. Pass nil for an
// unavailable tier.
func SelectCacheService(redisCache *RedisCacheService, mongoCache *MongoCacheService, ttl time.Duration, logger *zap.Logger) ICacheService {
	switch {
	case redisCache != nil && mongoCache != nil:
		return NewHybridCacheService(redisCache, mongoCache, logger)
	case redisCache != nil:
		logger.Warn("mongo cache unavailable, serving from redis only")
		return redisCache
	case mongoCache != nil:
		logger.Warn("redis cache unavailable, serving from mongo only")
		return mongoCache
	default:
		logger.Warn("no cache backends reachable, falling back to in-memory cache")
		cs := NewCacheService(ttl)
		cs.StartCleanupWorker(10 * time.Minute)
		return cs
	}
}

// RequestKey builds the canonical cache key for a request: the normalized
// five-tuple, so input variants that normalize alike share one entry.
func RequestKey(city, postalCode, street, houseNumber, orientationNumber string) string {
	return strings.Join([]string{
		normalizer.Normalize(city),
		normalizer.NormalizePostal(postalCode),
		normalizer.Normalize(street),
		normalizer.Normalize(houseNumber),
		normalizer.Normalize(orientationNumber),
	}, "|")
}

// Fingerprint hashes a request key for storage and indexing.
func Fingerprint(key string) string {
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("sha256:%x", hash)
}
