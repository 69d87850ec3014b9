package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidationCache is the persistent cache document for a validation result,
// keyed by the fingerprint of the normalized request tuple. Entries are
// scoped to the dataset version they were computed against so a reload can
// invalidate stale results in bulk.
type ValidationCache struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Fingerprint     string             `bson:"fingerprint" json:"fingerprint"`
	RequestKey      string             `bson:"request_key" json:"request_key"`
	Result          ValidationResult   `bson:"result" json:"result"`
	DatasetVersion  string             `bson:"dataset_version" json:"dataset_version"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed    time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount     int                `bson:"access_count" json:"access_count"`
}

// NewValidationCache creates a cache entry for a freshly computed result.
func NewValidationCache(fingerprint, requestKey string, result ValidationResult, datasetVersion string) *ValidationCache {
	now := time.Now()
	return &ValidationCache{
		Fingerprint:    fingerprint,
		RequestKey:     requestKey,
		Result:         result,
		DatasetVersion: datasetVersion,
		CreatedAt:      now,
		LastAccessed:   now,
		AccessCount:    1,
	}
}

// UpdateAccess records one more read of this entry.
func (vc *ValidationCache) UpdateAccess() {
	vc.LastAccessed = time.Now()
	vc.AccessCount++
}

// IsValidDatasetVersion reports whether the entry was computed against the
// currently loaded dataset.
func (vc *ValidationCache) IsValidDatasetVersion(currentVersion string) bool {
	return vc.DatasetVersion == currentVersion
}
