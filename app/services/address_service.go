package services

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/address-validator/app/models"
	"github.com/address-validator/app/requests"
	"github.com/address-validator/app/responses"
	"github.com/address-validator/internal/validator"
	"go.uber.org/zap"
)

// ValidationService wraps the resolution engine with request handling,
// counters and asynchronous batch jobs.
type ValidationService struct {
	engine         *validator.Engine
	logger         *zap.Logger
	startTime      time.Time
	datasetVersion atomic.Pointer[string]
	totalValidated atomic.Int64
	mu             sync.RWMutex

	// Job management
	jobs       map[string]*JobStatus
	jobResults map[string][]*models.ValidationResult
}

// JobStatus tracks one batch job.
type JobStatus struct {
	JobID              string
	Status             string
	Progress           float64
	Processed          int
	Total              int
	EstimatedRemaining int
	Message            string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewValidationService creates the service around an engine.
func NewValidationService(engine *validator.Engine, datasetVersion string, logger *zap.Logger) *ValidationService {
	vs := &ValidationService{
		engine:     engine,
		logger:     logger,
		startTime:  time.Now(),
		jobs:       make(map[string]*JobStatus),
		jobResults: make(map[string][]*models.ValidationResult),
	}
	vs.datasetVersion.Store(&datasetVersion)
	return vs
}

// Validate runs one address through the cascade. The result is always a
// value, valid or not; errors are reserved for transport-level faults.
func (vs *ValidationService) Validate(req requests.ValidateAddressRequest) *models.ValidationResult {
	result := vs.engine.Validate(req.City, req.PostalCode, req.Street, req.HouseNumber, req.OrientationNumber)
	vs.totalValidated.Add(1)
	return result
}

// Engine exposes the underlying engine for admin operations.
func (vs *ValidationService) Engine() *validator.Engine {
	return vs.engine
}

// DatasetVersion returns the version tag of the currently served dataset.
func (vs *ValidationService) DatasetVersion() string {
	return *vs.datasetVersion.Load()
}

// SetDatasetVersion records a new dataset version after a reload.
func (vs *ValidationService) SetDatasetVersion(version string) {
	vs.datasetVersion.Store(&version)
}

// TotalValidated returns the number of validations served since start.
func (vs *ValidationService) TotalValidated() int64 {
	return vs.totalValidated.Load()
}

// EstimateBatchProcessingTime estimates batch duration in seconds. Single
// validations are in-memory lookups, so the per-address budget is small.
func (vs *ValidationService) EstimateBatchProcessingTime(addressCount int) int {
	estimatedMs := addressCount * 2
	return estimatedMs/1000 + 1
}

// ProcessBatchJob validates a batch in the background, updating the job
// status as it goes. Meant to run in its own goroutine.
func (vs *ValidationService) ProcessBatchJob(jobID string, addresses []requests.ValidateAddressRequest) {
	vs.mu.Lock()
	vs.jobs[jobID] = &JobStatus{
		JobID:     jobID,
		Status:    responses.JobStatusRunning,
		Progress:  0.0,
		Processed: 0,
		Total:     len(addresses),
		Message:   "processing",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	vs.mu.Unlock()

	results := make([]*models.ValidationResult, len(addresses))

	for i, addr := range addresses {
		results[i] = vs.Validate(addr)

		vs.mu.Lock()
		if job, exists := vs.jobs[jobID]; exists {
			job.Processed = i + 1
			job.Progress = float64(i+1) / float64(len(addresses))
			job.UpdatedAt = time.Now()
		}
		vs.mu.Unlock()
	}

	// Finalize outside the loop so an empty batch still reaches "done".
	vs.mu.Lock()
	if job, exists := vs.jobs[jobID]; exists {
		job.Status = responses.JobStatusDone
		job.Progress = 1.0
		job.Message = "completed"
		job.UpdatedAt = time.Now()
	}
	vs.jobResults[jobID] = results
	vs.mu.Unlock()

	vs.logger.Info("batch job completed",
		zap.String("job_id", jobID),
		zap.Int("total_addresses", len(addresses)))
}

// GetJobStatus returns the status of a batch job.
func (vs *ValidationService) GetJobStatus(jobID string) (*JobStatus, error) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	job, exists := vs.jobs[jobID]
	if !exists {
		return nil, errors.New("job does not exist")
	}
	return job, nil
}

// GetJobResults returns the stored results of a finished batch job.
func (vs *ValidationService) GetJobResults(jobID string) ([]*models.ValidationResult, error) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	results, exists := vs.jobResults[jobID]
	if !exists {
		return nil, errors.New("job results do not exist")
	}
	return results, nil
}

// GetJobResultsStream exposes job results as a channel for streaming
// responses.
func (vs *ValidationService) GetJobResultsStream(jobID string) (<-chan *models.ValidationResult, error) {
	results, err := vs.GetJobResults(jobID)
	if err != nil {
		return nil, err
	}

	resultChannel := make(chan *models.ValidationResult, 100)

	go func() {
		defer close(resultChannel)
		for _, result := range results {
			resultChannel <- result
		}
	}()

	return resultChannel, nil
}

// ActiveJobs counts jobs that have not finished yet.
func (vs *ValidationService) ActiveJobs() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	active := 0
	for _, job := range vs.jobs {
		if job.Status == responses.JobStatusPending || job.Status == responses.JobStatusRunning {
			active++
		}
	}
	return active
}

// GetStartTime returns when the service started.
func (vs *ValidationService) GetStartTime() time.Time {
	return vs.startTime
}

// GetStats returns basic service statistics.
func (vs *ValidationService) GetStats() map[string]interface{} {
	uptime := time.Since(vs.startTime)

	return map[string]interface{}{
		"uptime_seconds":  int64(uptime.Seconds()),
		"start_time":      vs.startTime.Format(time.RFC3339),
		"status":          "running",
		"dataset_version": vs.DatasetVersion(),
		"dataset_records": vs.engine.Indices().RecordCount(),
		"total_validated": vs.TotalValidated(),
	}
}
