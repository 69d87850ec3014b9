package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Every cache implementation must satisfy the shared contract.
var (
	_ ICacheService = (*CacheService)(nil)
	_ ICacheService = (*RedisCacheService)(nil)
	_ ICacheService = (*MongoCacheService)(nil)
	_ ICacheService = (*HybridCacheService)(nil)
)

func TestSelectCacheServiceFallsBackToMemory(t *testing.T) {
	// With neither backend reachable the service must still start, on the
	// in-memory TTL cache.
	cache := SelectCacheService(nil, nil, time.Minute, zap.NewNop())

	require.NotNil(t, cache)
	_, ok := cache.(*CacheService)
	assert.True(t, ok, "expected the in-memory fallback, got %T", cache)
}

func TestCacheCountersConcurrent(t *testing.T) {
	var c cacheCounters

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.hit()
				c.miss()
			}
		}()
	}
	wg.Wait()

	hits, misses, hitRate := c.snapshot()
	assert.Equal(t, int64(8000), hits)
	assert.Equal(t, int64(8000), misses)
	assert.InDelta(t, 0.5, hitRate, 1e-9)

	c.reset()
	hits, misses, hitRate = c.snapshot()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
	assert.Zero(t, hitRate)
}
