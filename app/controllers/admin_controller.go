package controllers

import (
	"net/http"
	"time"

	"github.com/address-validator/app/requests"
	"github.com/address-validator/app/responses"
	"github.com/address-validator/app/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminController handles operational endpoints: dataset reload, search
// index seeding, cache management and statistics.
type AdminController struct {
	adminService *services.AdminService
	cacheService services.ICacheService
	logger       *zap.Logger
}

// NewAdminController creates the controller.
func NewAdminController(adminService *services.AdminService, cacheService services.ICacheService, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		cacheService: cacheService,
		logger:       logger,
	}
}

// ReloadDataset reloads the reference dataset and swaps the engine indices.
// An empty source in the body reloads from the configured one.
func (ac *AdminController) ReloadDataset(c *gin.Context) {
	var req requests.ReloadDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "INVALID_REQUEST",
			Message:   "invalid request: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	result, err := ac.adminService.ReloadDataset(c.Request.Context(), req.Source)
	if err != nil {
		ac.logger.Error("dataset reload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:     "RELOAD_ERROR",
			Message:   "dataset reload failed: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.ReloadDatasetResponse{
		DatasetVersion:   result.DatasetVersion,
		RecordsLoaded:    result.RecordsLoaded,
		ProcessingTimeMs: result.ProcessingTimeMs,
		Message:          "dataset reloaded",
	})
}

// SeedSearchIndex configures and loads the Meilisearch index from the
// current dataset.
func (ac *AdminController) SeedSearchIndex(c *gin.Context) {
	startTime := time.Now()

	seeded, err := ac.adminService.SeedSearchIndex(c.Request.Context())
	if err != nil {
		ac.logger.Error("search index seed failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:     "SEED_ERROR",
			Message:   "search index seed failed: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "search index seeded",
		Timestamp: time.Now().Format(time.RFC3339),
		Data: map[string]interface{}{
			"documents_seeded":   seeded,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		},
	})
}

// InvalidateCache flushes the result cache.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	startTime := time.Now()

	if err := ac.adminService.InvalidateCache(c.Request.Context()); err != nil {
		ac.logger.Error("cache invalidation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:     "INVALIDATE_ERROR",
			Message:   "cache invalidation failed: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "cache invalidated",
		Timestamp: time.Now().Format(time.RFC3339),
		Data: map[string]interface{}{
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		},
	})
}

// GetStats returns operational counters.
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("stats collection failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:     "STATS_ERROR",
			Message:   "stats collection failed: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.AdminStatsResponse{
		DatasetVersion:  stats.DatasetVersion,
		DatasetRecords:  stats.DatasetRecords,
		CacheHitRate:    stats.CacheStats.HitRate,
		TotalValidated:  stats.TotalValidated,
		TotalCached:     stats.CacheStats.TotalItems,
		CacheTiers:      stats.CacheTiers,
		ActiveBatchJobs: stats.ActiveJobs,
		UptimeSeconds:   stats.UptimeSeconds,
		LastUpdated:     time.Now().Format(time.RFC3339),
	})
}
