package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/address-validator/app/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCacheService is the fast L1 result cache.
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	counters cacheCounters
}

// NewRedisCacheService connects to Redis and verifies the connection.
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: "addr_validator:",
		ttl:    ttl,
	}, nil
}

// Get returns a cached validation result.
func (rcs *RedisCacheService) Get(ctx context.Context, key string) (*models.ValidationResult, bool, error) {
	cacheKey := rcs.prefix + key

	val, err := rcs.client.Get(ctx, cacheKey).Result()
	if err == redis.Nil {
		rcs.counters.miss()
		return nil, false, nil
	}
	if err != nil {
		rcs.logger.Error("redis get failed", zap.Error(err), zap.String("key", cacheKey))
		return nil, false, err
	}

	var result models.ValidationResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		rcs.logger.Error("unmarshal cached result failed", zap.Error(err))
		return nil, false, err
	}

	rcs.counters.hit()
	rcs.logger.Debug("redis cache hit", zap.String("key", key))
	return &result, true, nil
}

// Set stores a validation result with the configured TTL.
func (rcs *RedisCacheService) Set(ctx context.Context, key string, result *models.ValidationResult) error {
	cacheKey := rcs.prefix + key

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal cached result: %w", err)
	}

	if err := rcs.client.Set(ctx, cacheKey, data, rcs.ttl).Err(); err != nil {
		rcs.logger.Error("redis set failed", zap.Error(err), zap.String("key", cacheKey))
		return err
	}

	rcs.logger.Debug("stored in redis cache", zap.String("key", key))
	return nil
}

// Delete removes one entry.
func (rcs *RedisCacheService) Delete(ctx context.Context, key string) error {
	cacheKey := rcs.prefix + key

	if err := rcs.client.Del(ctx, cacheKey).Err(); err != nil {
		rcs.logger.Error("redis delete failed", zap.Error(err), zap.String("key", cacheKey))
		return err
	}
	return nil
}

// Clear removes all entries under the service prefix.
func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	pattern := rcs.prefix + "*"
	keys, err := rcs.client.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("list redis keys: %w", err)
	}

	if len(keys) > 0 {
		if err := rcs.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete redis keys: %w", err)
		}
	}

	rcs.logger.Info("cleared redis cache", zap.Int("keys_deleted", len(keys)))
	return nil
}

// InvalidateByDatasetVersion clears everything: Redis keys do not carry the
// dataset version, so a reload flushes the whole L1.
func (rcs *RedisCacheService) InvalidateByDatasetVersion(ctx context.Context, datasetVersion string) error {
	return rcs.Clear(ctx)
}

// GetStats returns cache counters.
func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses, hitRate := rcs.counters.snapshot()

	keys, err := rcs.client.Keys(ctx, rcs.prefix+"*").Result()
	totalItems := int64(0)
	if err == nil {
		totalItems = int64(len(keys))
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: totalItems,
	}, nil
}

// Exists reports whether a key is cached.
func (rcs *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := rcs.client.Exists(ctx, rcs.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// GetTTL returns the remaining TTL of a key.
func (rcs *RedisCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return rcs.client.TTL(ctx, rcs.prefix+key).Result()
}

// Close closes the Redis connection.
func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}
