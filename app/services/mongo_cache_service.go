package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/address-validator/app/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoCacheService is the persistent L2 result cache, fronted by an
// in-process LRU so hot fingerprints skip the database round trip.
type MongoCacheService struct {
	db             *mongo.Database
	collection     *mongo.Collection
	l1Cache        *lru.Cache[string, *models.ValidationResult]
	datasetVersion atomic.Pointer[string]
	logger         *zap.Logger

	// Per-tier counters; the full-miss count is the mongo tier's misses.
	l1    cacheCounters
	mongo cacheCounters
}

// NewMongoCacheService creates the cache over the validation_cache
// collection and builds its indexes.
func NewMongoCacheService(db *mongo.Database, l1Size int, datasetVersion string, logger *zap.Logger) (*MongoCacheService, error) {
	l1Cache, err := lru.New[string, *models.ValidationResult](l1Size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}

	collection := db.Collection("validation_cache")

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{bson.E{Key: "dataset_version", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "last_accessed", Value: 1}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("could not create validation_cache indexes", zap.Error(err))
	}

	service := &MongoCacheService{
		db:         db,
		collection: collection,
		l1Cache:    l1Cache,
		logger:     logger,
	}
	service.datasetVersion.Store(&datasetVersion)

	return service, nil
}

// SetDatasetVersion records the version new entries are written against.
func (mcs *MongoCacheService) SetDatasetVersion(version string) {
	mcs.datasetVersion.Store(&version)
}

func (mcs *MongoCacheService) currentVersion() string {
	return *mcs.datasetVersion.Load()
}

// Get returns a cached result, trying the in-process LRU before MongoDB.
func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.ValidationResult, bool, error) {
	if result, found := mcs.l1Cache.Get(key); found {
		mcs.l1.hit()
		mcs.logger.Debug("lru cache hit", zap.String("key", key))
		return result, true, nil
	}
	mcs.l1.miss()

	fingerprint := Fingerprint(key)

	var cacheEntry models.ValidationCache
	filter := bson.M{"fingerprint": fingerprint}

	err := mcs.collection.FindOne(ctx, filter).Decode(&cacheEntry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			mcs.mongo.miss()
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query mongo cache: %w", err)
	}

	// Entries from an older dataset are stale; treat as a miss and let the
	// caller recompute.
	if !cacheEntry.IsValidDatasetVersion(mcs.currentVersion()) {
		mcs.mongo.miss()
		return nil, false, nil
	}

	mcs.mongo.hit()

	go mcs.updateAccessStats(context.Background(), cacheEntry.ID)

	mcs.l1Cache.Add(key, &cacheEntry.Result)

	mcs.logger.Debug("mongo cache hit",
		zap.String("key", key),
		zap.String("fingerprint", fingerprint))

	return &cacheEntry.Result, true, nil
}

// Set stores a result in both the LRU and MongoDB.
func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.ValidationResult) error {
	mcs.l1Cache.Add(key, result)

	fingerprint := Fingerprint(key)
	cacheEntry := models.NewValidationCache(fingerprint, key, *result, mcs.currentVersion())

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"fingerprint": fingerprint}

	if _, err := mcs.collection.ReplaceOne(ctx, filter, cacheEntry, opts); err != nil {
		mcs.logger.Error("mongo cache store failed",
			zap.Error(err),
			zap.String("fingerprint", fingerprint))
		return fmt.Errorf("store in mongo cache: %w", err)
	}

	mcs.logger.Debug("stored in mongo cache",
		zap.String("key", key),
		zap.String("fingerprint", fingerprint))

	return nil
}

// Delete removes one entry from both tiers.
func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)

	filter := bson.M{"fingerprint": Fingerprint(key)}
	if _, err := mcs.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("delete from mongo cache: %w", err)
	}
	return nil
}

// Clear removes all entries and resets counters.
func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()

	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear mongo cache: %w", err)
	}

	mcs.l1.reset()
	mcs.mongo.reset()

	return nil
}

// InvalidateByDatasetVersion drops entries computed against any other
// dataset version and flushes the LRU.
func (mcs *MongoCacheService) InvalidateByDatasetVersion(ctx context.Context, datasetVersion string) error {
	mcs.l1Cache.Purge()
	mcs.SetDatasetVersion(datasetVersion)

	filter := bson.M{"dataset_version": bson.M{"$ne": datasetVersion}}

	result, err := mcs.collection.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("invalidate mongo cache by dataset version: %w", err)
	}

	mcs.logger.Info("invalidated mongo cache",
		zap.String("dataset_version", datasetVersion),
		zap.Int64("deleted_count", result.DeletedCount))

	return nil
}

// GetStats returns combined counters.
func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	mongoCount, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count mongo cache documents: %w", err)
	}

	l1Hits, _, _ := mcs.l1.snapshot()
	mongoHits, mongoMisses, _ := mcs.mongo.snapshot()

	totalHits := l1Hits + mongoHits
	hitRate := float64(0)
	if total := totalHits + mongoMisses; total > 0 {
		hitRate = float64(totalHits) / float64(total)
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  totalHits,
		TotalMiss:  mongoMisses,
		TotalItems: mongoCount,
	}, nil
}

// Exists reports whether a key is cached in either tier.
func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1Cache.Contains(key) {
		return true, nil
	}

	filter := bson.M{"fingerprint": Fingerprint(key)}
	count, err := mcs.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("check mongo cache existence: %w", err)
	}
	return count > 0, nil
}

// GetTTL always reports zero: the persistent tier has no expiry, staleness
// is handled by dataset-version invalidation.
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, nil
}

// Close is a no-op; the Mongo connection belongs to the caller.
func (mcs *MongoCacheService) Close() error {
	return nil
}

// updateAccessStats bumps last_accessed and access_count in the background.
func (mcs *MongoCacheService) updateAccessStats(ctx context.Context, id primitive.ObjectID) {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}

	if _, err := mcs.collection.UpdateOne(ctx, filter, update); err != nil {
		mcs.logger.Warn("update access stats failed", zap.Error(err))
	}
}

// GetL1Stats returns per-tier counters.
func (mcs *MongoCacheService) GetL1Stats() map[string]interface{} {
	l1Hits, l1Misses, _ := mcs.l1.snapshot()
	mongoHits, mongoMisses, _ := mcs.mongo.snapshot()

	return map[string]interface{}{
		"l1_size":    mcs.l1Cache.Len(),
		"l1_hits":    l1Hits,
		"l1_miss":    l1Misses,
		"mongo_hits": mongoHits,
		"mongo_miss": mongoMisses,
		"total_hits": l1Hits + mongoHits,
		"total_miss": mongoMisses,
	}
}

// WarmUp preloads the LRU with the most-accessed entries for the current
// dataset version.
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	filter := bson.M{"dataset_version": mcs.currentVersion()}

	cursor, err := mcs.collection.Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("warm up cache: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var cacheEntry models.ValidationCache
		if err := cursor.Decode(&cacheEntry); err != nil {
			mcs.logger.Warn("decode cache entry during warm up failed", zap.Error(err))
			continue
		}

		mcs.l1Cache.Add(cacheEntry.RequestKey, &cacheEntry.Result)
		count++
	}

	mcs.logger.Info("cache warm up finished",
		zap.Int("loaded_items", count),
		zap.Int("l1_size", mcs.l1Cache.Len()))

	return nil
}
