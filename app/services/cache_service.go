package services

import (
	"context"
	"sync"
	"time"

	"github.com/address-validator/app/models"
)

// CacheService is a plain in-memory result cache with TTL eviction. Used as
// a standalone fallback when neither Redis nor MongoDB is configured.
type CacheService struct {
	cache      map[string]*models.ValidationResult
	timestamps map[string]time.Time
	mu         sync.RWMutex
	ttl        time.Duration
}

// NewCacheService creates the cache with a fixed TTL.
func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{
		cache:      make(map[string]*models.ValidationResult),
		timestamps: make(map[string]time.Time),
		ttl:        ttl,
	}
}

// Get returns a cached result if present and not expired.
func (cs *CacheService) Get(ctx context.Context, key string) (*models.ValidationResult, bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	if result, exists := cs.cache[key]; exists {
		if cs.isExpired(key) {
			go cs.deleteExpired(key)
			return nil, false, nil
		}
		return result, true, nil
	}

	return nil, false, nil
}

// Set stores a result.
func (cs *CacheService) Set(ctx context.Context, key string, result *models.ValidationResult) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.timestamps[key] = time.Now()
	cs.cache[key] = result

	return nil
}

// Delete removes one entry.
func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.cache, key)
	delete(cs.timestamps, key)

	return nil
}

// Clear removes all entries.
func (cs *CacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache = make(map[string]*models.ValidationResult)
	cs.timestamps = make(map[string]time.Time)

	return nil
}

// InvalidateByDatasetVersion drops everything; in-memory entries do not
// carry a version tag.
func (cs *CacheService) InvalidateByDatasetVersion(ctx context.Context, datasetVersion string) error {
	return cs.Clear(ctx)
}

// Size returns the entry count.
func (cs *CacheService) Size() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return len(cs.cache)
}

// GetStats returns cache counters.
func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	active := int64(0)
	for key := range cs.cache {
		if !cs.isExpired(key) {
			active++
		}
	}

	return &CacheStats{TotalItems: active}, nil
}

// CleanupExpired removes expired entries.
func (cs *CacheService) CleanupExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key := range cs.cache {
		if cs.isExpired(key) {
			delete(cs.cache, key)
			delete(cs.timestamps, key)
		}
	}
}

func (cs *CacheService) isExpired(key string) bool {
	timestamp, exists := cs.timestamps[key]
	if !exists {
		return true
	}
	return time.Since(timestamp) > cs.ttl
}

func (cs *CacheService) deleteExpired(key string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.cache, key)
	delete(cs.timestamps, key)
}

// Exists reports whether a key is cached.
func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	_, exists := cs.cache[key]
	return exists, nil
}

// GetTTL returns the remaining lifetime of a key.
func (cs *CacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	timestamp, exists := cs.timestamps[key]
	if !exists {
		return 0, nil
	}

	remaining := cs.ttl - time.Since(timestamp)
	if remaining < 0 {
		return 0, nil
	}

	return remaining, nil
}

// StartCleanupWorker evicts expired entries on an interval.
func (cs *CacheService) StartCleanupWorker(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			cs.CleanupExpired()
		}
	}()
}

// Close is a no-op for the in-memory cache.
func (cs *CacheService) Close() error {
	return nil
}
