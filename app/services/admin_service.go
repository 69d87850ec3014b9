package services

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/address-validator/app/models"
	"github.com/address-validator/internal/dataset"
	"github.com/address-validator/internal/gazetteer"
	"github.com/address-validator/internal/search"
	"go.uber.org/zap"
)

// AdminService owns the operational surface: dataset reloads, search index
// seeding and system statistics.
type AdminService struct {
	loader     *dataset.Loader
	validation *ValidationService
	cache      ICacheService
	searcher   *search.AddressSearcher
	logger     *zap.Logger

	mu      sync.RWMutex
	records []models.AddressRecord
}

// ReloadResult reports the outcome of a dataset reload.
type ReloadResult struct {
	DatasetVersion   string `json:"dataset_version"`
	RecordsLoaded    int    `json:"records_loaded"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// SystemStats aggregates operational counters for the admin API.
type SystemStats struct {
	DatasetVersion string                 `json:"dataset_version"`
	DatasetRecords int                    `json:"dataset_records"`
	TotalValidated int64                  `json:"total_validated"`
	CacheStats     *CacheStats            `json:"cache_stats"`
	CacheTiers     map[string]interface{} `json:"cache_tiers,omitempty"`
	ActiveJobs     int                    `json:"active_jobs"`
	Uptime         string                 `json:"uptime"`
	UptimeSeconds  int64                  `json:"uptime_seconds"`
	MemoryUsage    map[string]interface{} `json:"memory_usage"`
}

// NewAdminService creates the service. The searcher may be nil when
// Meilisearch is not configured.
func NewAdminService(loader *dataset.Loader, validation *ValidationService, cache ICacheService, searcher *search.AddressSearcher, records []models.AddressRecord, logger *zap.Logger) *AdminService {
	return &AdminService{
		loader:     loader,
		validation: validation,
		cache:      cache,
		searcher:   searcher,
		logger:     logger,
		records:    records,
	}
}

// ReloadDataset fetches the dataset, rebuilds the indices and swaps them
// into the engine, then invalidates results cached against the old version.
// In-flight validations keep using the old indices until the swap.
func (as *AdminService) ReloadDataset(ctx context.Context, source string) (*ReloadResult, error) {
	startTime := time.Now()

	records, err := as.loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("reload dataset: %w", err)
	}

	indices := gazetteer.Build(records)
	version := time.Now().UTC().Format("20060102T150405Z")

	as.validation.Engine().Swap(indices)
	as.validation.SetDatasetVersion(version)

	as.mu.Lock()
	as.records = records
	as.mu.Unlock()

	if err := as.cache.InvalidateByDatasetVersion(ctx, version); err != nil {
		as.logger.Warn("cache invalidation after reload failed", zap.Error(err))
	}

	if as.searcher != nil {
		if err := as.searcher.SeedRecords(records); err != nil {
			as.logger.Warn("search index reseed failed", zap.Error(err))
		}
	}

	processingTime := time.Since(startTime)

	as.logger.Info("dataset reloaded",
		zap.String("source", source),
		zap.String("dataset_version", version),
		zap.Int("records", len(records)),
		zap.Duration("processing_time", processingTime))

	return &ReloadResult{
		DatasetVersion:   version,
		RecordsLoaded:    len(records),
		ProcessingTimeMs: processingTime.Milliseconds(),
	}, nil
}

// SeedSearchIndex configures the Meilisearch index and loads the current
// dataset into it.
func (as *AdminService) SeedSearchIndex(ctx context.Context) (int, error) {
	if as.searcher == nil {
		return 0, fmt.Errorf("search is not configured")
	}

	if err := as.searcher.BuildIndexes(); err != nil {
		return 0, err
	}

	as.mu.RLock()
	records := as.records
	as.mu.RUnlock()

	if err := as.searcher.SeedRecords(records); err != nil {
		return 0, err
	}

	return len(records), nil
}

// InvalidateCache flushes the result cache.
func (as *AdminService) InvalidateCache(ctx context.Context) error {
	return as.cache.Clear(ctx)
}

// Records returns the currently loaded dataset rows.
func (as *AdminService) Records() []models.AddressRecord {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.records
}

// GetSystemStats collects operational counters.
func (as *AdminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	cacheStats, err := as.cache.GetStats(ctx)
	if err != nil {
		as.logger.Warn("cache stats unavailable", zap.Error(err))
		cacheStats = &CacheStats{}
	}

	// Per-tier counters when the cache stack exposes them (hybrid/mongo).
	var cacheTiers map[string]interface{}
	if tiered, ok := as.cache.(interface{ GetL1Stats() map[string]interface{} }); ok {
		cacheTiers = tiered.GetL1Stats()
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	memoryUsage := map[string]interface{}{
		"alloc_mb":       bToMb(m.Alloc),
		"total_alloc_mb": bToMb(m.TotalAlloc),
		"sys_mb":         bToMb(m.Sys),
		"num_gc":         m.NumGC,
	}

	return &SystemStats{
		DatasetVersion: as.validation.DatasetVersion(),
		DatasetRecords: as.validation.Engine().Indices().RecordCount(),
		TotalValidated: as.validation.TotalValidated(),
		CacheStats:     cacheStats,
		CacheTiers:     cacheTiers,
		ActiveJobs:     as.validation.ActiveJobs(),
		Uptime:         time.Since(as.validation.GetStartTime()).Round(time.Second).String(),
		UptimeSeconds:  int64(time.Since(as.validation.GetStartTime()).Seconds()),
		MemoryUsage:    memoryUsage,
	}, nil
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
