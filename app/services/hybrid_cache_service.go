package services

import (
	"context"
	"fmt"
	"time"

	"github.com/address-validator/app/models"
	"go.uber.org/zap"
)

// HybridCacheService layers Redis (fast, volatile) over MongoDB
// (persistent). Reads fall through, writes fan out to both.
type HybridCacheService struct {
	redisCache *RedisCacheService
	mongoCache *MongoCacheService
	logger     *zap.Logger
}

// NewHybridCacheService combines the two tiers.
func NewHybridCacheService(redisCache *RedisCacheService, mongoCache *MongoCacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{
		redisCache: redisCache,
		mongoCache: mongoCache,
		logger:     logger,
	}
}

// Get tries Redis first, then MongoDB; MongoDB hits are promoted back into
// Redis in the background.
func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.ValidationResult, bool, error) {
	result, found, err := hcs.redisCache.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("redis cache error, falling back to mongo", zap.Error(err))
	} else if found {
		hcs.logger.Debug("l1 cache hit (redis)", zap.String("key", key))
		return result, true, nil
	}

	result, found, err = hcs.mongoCache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		hcs.logger.Debug("cache miss (both tiers)", zap.String("key", key))
		return nil, false, nil
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := hcs.redisCache.Set(bgCtx, key, result); err != nil {
			hcs.logger.Warn("mongo->redis promotion failed", zap.Error(err), zap.String("key", key))
		}
	}()

	hcs.logger.Debug("l2 cache hit (mongo)", zap.String("key", key))
	return result, true, nil
}

// Set writes to both tiers in parallel.
func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.ValidationResult) error {
	errCh := make(chan error, 2)

	go func() {
		err := hcs.redisCache.Set(ctx, key, result)
		if err != nil {
			hcs.logger.Warn("redis store failed", zap.Error(err))
		}
		errCh <- err
	}()

	go func() {
		err := hcs.mongoCache.Set(ctx, key, result)
		if err != nil {
			hcs.logger.Warn("mongo store failed", zap.Error(err))
		}
		errCh <- err
	}()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cache errors: %v", errs)
	}

	hcs.logger.Debug("stored in hybrid cache", zap.String("key", key))
	return nil
}

// Delete removes a key from both tiers.
func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- hcs.redisCache.Delete(ctx, key)
	}()
	go func() {
		errCh <- hcs.mongoCache.Delete(ctx, key)
	}()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("delete errors: %v", errs)
	}
	return nil
}

// Clear wipes both tiers.
func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- hcs.redisCache.Clear(ctx)
	}()
	go func() {
		errCh <- hcs.mongoCache.Clear(ctx)
	}()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("clear errors: %v", errs)
	}

	hcs.logger.Info("cleared hybrid cache (redis + mongo)")
	return nil
}

// InvalidateByDatasetVersion invalidates both tiers after a reload.
func (hcs *HybridCacheService) InvalidateByDatasetVersion(ctx context.Context, datasetVersion string) error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- hcs.redisCache.InvalidateByDatasetVersion(ctx, datasetVersion)
	}()
	go func() {
		errCh <- hcs.mongoCache.InvalidateByDatasetVersion(ctx, datasetVersion)
	}()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalidate errors: %v", errs)
	}

	hcs.logger.Info("invalidated hybrid cache", zap.String("dataset_version", datasetVersion))
	return nil
}

// GetStats merges counters from both tiers; one healthy tier is enough.
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	redisStats, redisErr := hcs.redisCache.GetStats(ctx)
	mongoStats, mongoErr := hcs.mongoCache.GetStats(ctx)

	if redisErr != nil && mongoErr != nil {
		return nil, fmt.Errorf("both cache tiers failed: %v, %v", redisErr, mongoErr)
	}

	combinedStats := &CacheStats{}

	if redisErr == nil && mongoErr == nil {
		totalHits := redisStats.TotalHits + mongoStats.TotalHits
		totalMiss := redisStats.TotalMiss + mongoStats.TotalMiss
		total := totalHits + totalMiss

		if total > 0 {
			combinedStats.HitRate = float64(totalHits) / float64(total)
		}
		combinedStats.TotalHits = totalHits
		combinedStats.TotalMiss = totalMiss
		combinedStats.TotalItems = redisStats.TotalItems + mongoStats.TotalItems
	} else if redisErr == nil {
		*combinedStats = *redisStats
	} else {
		*combinedStats = *mongoStats
	}

	return combinedStats, nil
}

// Exists checks Redis first, then MongoDB.
func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.redisCache.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("redis exists check failed, falling back to mongo", zap.Error(err))
	} else if exists {
		return true, nil
	}

	return hcs.mongoCache.Exists(ctx, key)
}

// GetTTL reports the Redis TTL; the persistent tier has none.
func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.redisCache.GetTTL(ctx, key)
}

// Close closes both tiers.
func (hcs *HybridCacheService) Close() error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- hcs.redisCache.Close()
	}()
	go func() {
		errCh <- hcs.mongoCache.Close()
	}()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// GetL1Stats exposes the persistent tier's per-tier counters.
func (hcs *HybridCacheService) GetL1Stats() map[string]interface{} {
	return hcs.mongoCache.GetL1Stats()
}

// WarmUpFromMongoDB preloads the in-process LRU from the persistent tier.
func (hcs *HybridCacheService) WarmUpFromMongoDB(ctx context.Context, limit int) error {
	return hcs.mongoCache.WarmUp(ctx, limit)
}
