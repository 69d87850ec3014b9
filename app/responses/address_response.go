package responses

import (
	"github.com/address-validator/app/models"
)

// ValidateAddressResponse wraps a single validation outcome. Invalid
// addresses are still a 200 response; the verdict lives in the result.
type ValidateAddressResponse struct {
	Result           *models.ValidationResult `json:"result"`
	DatasetVersion   string                   `json:"dataset_version"`
	ProcessingTimeMs int64                    `json:"processing_time_ms"`
	CacheHit         bool                     `json:"cache_hit"`
}

// BatchValidateResponse acknowledges an accepted batch job.
type BatchValidateResponse struct {
	JobID            string `json:"job_id"`
	EstimatedSeconds int    `json:"estimated_seconds"`
	TotalAddresses   int    `json:"total_addresses"`
	Message          string `json:"message"`
}

// JobStatusResponse reports batch job progress.
type JobStatusResponse struct {
	JobID              string  `json:"job_id"`
	Status             string  `json:"status"`
	Progress           float64 `json:"progress"`
	Processed          int     `json:"processed"`
	Total              int     `json:"total"`
	EstimatedRemaining int     `json:"estimated_remaining"`
	Message            string  `json:"message"`
}

// JobStatus constants
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// ReloadDatasetResponse reports the outcome of a dataset reload.
type ReloadDatasetResponse struct {
	DatasetVersion   string `json:"dataset_version"`
	RecordsLoaded    int    `json:"records_loaded"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	Message          string `json:"message"`
}

// SearchAddressResponse carries autocomplete hits.
type SearchAddressResponse struct {
	Hits             []models.AddressRecord `json:"hits"`
	Total            int                    `json:"total"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
}

// AdminStatsResponse aggregates operational counters.
type AdminStatsResponse struct {
	DatasetVersion  string                 `json:"dataset_version"`
	DatasetRecords  int                    `json:"dataset_records"`
	CacheHitRate    float64                `json:"cache_hit_rate"`
	TotalValidated  int64                  `json:"total_validated"`
	TotalCached     int64                  `json:"total_cached"`
	CacheTiers      map[string]interface{} `json:"cache_tiers,omitempty"`
	ActiveBatchJobs int                    `json:"active_batch_jobs"`
	UptimeSeconds   int64                  `json:"uptime_seconds"`
	LastUpdated     string                 `json:"last_updated"`
}

// ErrorResponse reports transport-level failures: malformed requests,
// unknown jobs, backend outages. Never used for invalid addresses.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// SuccessResponse is the generic acknowledgement envelope.
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HealthCheckResponse reports service liveness and backend reachability.
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}
