package controllers

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/address-validator/app/config"
	"github.com/address-validator/app/requests"
	"github.com/address-validator/app/responses"
	"github.com/address-validator/app/services"
	"github.com/address-validator/helpers/utils"
	"github.com/address-validator/internal/search"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AddressController handles the public validation endpoints.
type AddressController struct {
	validationService *services.ValidationService
	cacheService      services.ICacheService
	searcher          *search.AddressSearcher
	logger            *zap.Logger
}

// NewAddressController creates the controller. The searcher may be nil when
// Meilisearch is not configured.
func NewAddressController(validationService *services.ValidationService, cacheService services.ICacheService, searcher *search.AddressSearcher, logger *zap.Logger) *AddressController {
	return &AddressController{
		validationService: validationService,
		cacheService:      cacheService,
		searcher:          searcher,
		logger:            logger,
	}
}

// ValidateAddress validates a single address. An invalid address is a valid
// outcome: the response is still 200, with the verdict in the result.
func (ac *AddressController) ValidateAddress(c *gin.Context) {
	var req requests.ValidateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "INVALID_REQUEST",
			Message:   "invalid request: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	startTime := time.Now()
	cacheKey := services.RequestKey(req.City, req.PostalCode, req.Street, req.HouseNumber, req.OrientationNumber)

	// Cache lookups ride the request budget; a slow backend must not stall
	// an in-memory validation.
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.RequestTimeout())
	defer cancel()

	if req.Options.UseCache {
		if cached, found, err := ac.cacheService.Get(ctx, cacheKey); err == nil && found {
			c.JSON(http.StatusOK, responses.ValidateAddressResponse{
				Result:           cached,
				DatasetVersion:   ac.validationService.DatasetVersion(),
				ProcessingTimeMs: time.Since(startTime).Milliseconds(),
				CacheHit:         true,
			})
			return
		}
	}

	result := ac.validationService.Validate(req)

	if req.Options.UseCache {
		if err := ac.cacheService.Set(ctx, cacheKey, result); err != nil {
			ac.logger.Warn("result cache store failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, responses.ValidateAddressResponse{
		Result:           result,
		DatasetVersion:   ac.validationService.DatasetVersion(),
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		CacheHit:         false,
	})
}

// BatchValidate accepts a batch and validates it asynchronously.
func (ac *AddressController) BatchValidate(c *gin.Context) {
	var req requests.BatchValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "INVALID_REQUEST",
			Message:   "invalid request: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	if len(req.Addresses) > 20000 {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "TOO_MANY_ADDRESSES",
			Message:   "address count exceeds the limit (20,000)",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	jobID := utils.GenerateUUID()
	estimatedTime := ac.validationService.EstimateBatchProcessingTime(len(req.Addresses))

	go ac.validationService.ProcessBatchJob(jobID, req.Addresses)

	c.JSON(http.StatusAccepted, responses.BatchValidateResponse{
		JobID:            jobID,
		EstimatedSeconds: estimatedTime,
		TotalAddresses:   len(req.Addresses),
		Message:          "job accepted and processing",
	})
}

// GetJobStatus reports batch job progress.
func (ac *AddressController) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobID")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "MISSING_JOB_ID",
			Message:   "job id is required",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	status, err := ac.validationService.GetJobStatus(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:     "JOB_NOT_FOUND",
			Message:   "job not found: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.JobStatusResponse{
		JobID:              jobID,
		Status:             status.Status,
		Progress:           status.Progress,
		Processed:          status.Processed,
		Total:              status.Total,
		EstimatedRemaining: status.EstimatedRemaining,
		Message:            status.Message,
	})
}

// GetJobResults returns batch results, optionally streamed as NDJSON with
// gzip compression.
func (ac *AddressController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "MISSING_JOB_ID",
			Message:   "job id is required",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	format := c.Query("format")
	gzipEnabled := c.Query("gzip") == "1"

	if format == "ndjson" {
		ac.streamNDJSONResults(c, jobID, gzipEnabled)
		return
	}

	results, err := ac.validationService.GetJobResults(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:     "JOB_NOT_FOUND",
			Message:   "job not found: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "job results",
		Data:      results,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// SearchAddress serves free-text autocomplete over the dataset.
func (ac *AddressController) SearchAddress(c *gin.Context) {
	if ac.searcher == nil {
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Error:     "SEARCH_UNAVAILABLE",
			Message:   "search is not configured",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	var req requests.SearchAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "INVALID_REQUEST",
			Message:   "invalid request: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	startTime := time.Now()

	hits, err := ac.searcher.Search(req.Query, req.Limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, responses.ErrorResponse{
			Error:     "SEARCH_ERROR",
			Message:   "search failed: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.SearchAddressResponse{
		Hits:             hits,
		Total:            len(hits),
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// HealthCheck reports service liveness.
func (ac *AddressController) HealthCheck(c *gin.Context) {
	uptime := time.Since(ac.validationService.GetStartTime())

	searchStatus := "unconfigured"
	if ac.searcher != nil {
		searchStatus = "unhealthy"
		if ac.searcher.Healthy() {
			searchStatus = "healthy"
		}
	}

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    uptime.String(),
		Version:   "1.0.0",
		Services: map[string]string{
			"validator": "healthy",
			"cache":     "healthy",
			"search":    searchStatus,
		},
	})
}

// streamNDJSONResults streams job results as NDJSON, gzipped on request.
func (ac *AddressController) streamNDJSONResults(c *gin.Context, jobID string, gzipEnabled bool) {
	resultChannel, err := ac.validationService.GetJobResultsStream(jobID)
	if err != nil {
		ac.logger.Error("job results stream failed", zap.Error(err))
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:     "JOB_NOT_FOUND",
			Message:   "job not found: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
	}

	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		writer = &gzipResponseWriter{
			ResponseWriter: c.Writer,
			gzWriter:       gzWriter,
		}
	}

	encoder := json.NewEncoder(writer)
	for result := range resultChannel {
		if err := encoder.Encode(result); err != nil {
			ac.logger.Error("ndjson encode failed", zap.Error(err))
			break
		}

		if flusher, ok := writer.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

// gzipResponseWriter wraps the gin writer with a gzip stream.
type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) Flush() {
	w.gzWriter.Flush()
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
