package services

import (
	"strings"
	"testing"

	"github.com/address-validator/app/models"
	"github.com/address-validator/app/requests"
	"github.com/address-validator/app/responses"
	"github.com/address-validator/internal/gazetteer"
	"github.com/address-validator/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testValidationService() *ValidationService {
	ix := gazetteer.Build([]models.AddressRecord{
		{City: "Praha", PostalCode: "110 00", Street: "Václavské náměstí", HouseNumber: "1", OrientationNumber: "846"},
		{City: "Praha", PostalCode: "110 00", Street: "Na Příkopě", HouseNumber: "12"},
		{City: "Brno", PostalCode: "602 00", Street: "Česká", HouseNumber: "5"},
	})
	engine := validator.NewEngine(ix, validator.DefaultConfig(), zap.NewNop())
	return NewValidationService(engine, "20260101T000000Z", zap.NewNop())
}

func TestValidateCountsRequests(t *testing.T) {
	vs := testValidationService()

	res := vs.Validate(requests.ValidateAddressRequest{
		City: "Praha", PostalCode: "110 00", Street: "Václavské náměstí", HouseNumber: "1", OrientationNumber: "846",
	})
	require.True(t, res.Valid)

	res = vs.Validate(requests.ValidateAddressRequest{
		City: "Atlantis", PostalCode: "000 00", Street: "Nowhere", HouseNumber: "1",
	})
	require.False(t, res.Valid)

	assert.Equal(t, int64(2), vs.TotalValidated())
}

func TestDatasetVersionSwap(t *testing.T) {
	vs := testValidationService()
	assert.Equal(t, "20260101T000000Z", vs.DatasetVersion())

	vs.SetDatasetVersion("20260102T000000Z")
	assert.Equal(t, "20260102T000000Z", vs.DatasetVersion())
}

func TestProcessBatchJobLifecycle(t *testing.T) {
	vs := testValidationService()

	addresses := []requests.ValidateAddressRequest{
		{City: "Praha", PostalCode: "110 00", Street: "Václavské náměstí", HouseNumber: "1", OrientationNumber: "846"},
		{City: "Brno", PostalCode: "602 00", Street: "Česká", HouseNumber: "5"},
		{City: "Atlantis", PostalCode: "000 00", Street: "Nowhere", HouseNumber: "1"},
	}

	// Synchronous call so the test observes the final state directly.
	vs.ProcessBatchJob("job-1", addresses)

	job, err := vs.GetJobStatus("job-1")
	require.NoError(t, err)
	assert.Equal(t, responses.JobStatusDone, job.Status)
	assert.Equal(t, 3, job.Processed)
	assert.Equal(t, 3, job.Total)
	assert.InDelta(t, 1.0, job.Progress, 1e-9)

	results, err := vs.GetJobResults("job-1")
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Per-address results stay in request order, valid and invalid mixed.
	assert.True(t, results[0].Valid)
	assert.True(t, results[1].Valid)
	assert.False(t, results[2].Valid)
	assert.Equal(t, "city", results[2].Stage)

	assert.Equal(t, 0, vs.ActiveJobs())
}

func TestProcessBatchJobEmptyBatch(t *testing.T) {
	vs := testValidationService()

	// The HTTP layer rejects empty batches, but the service must still
	// finalize one instead of leaving it running forever.
	vs.ProcessBatchJob("job-empty", nil)

	job, err := vs.GetJobStatus("job-empty")
	require.NoError(t, err)
	assert.Equal(t, responses.JobStatusDone, job.Status)
	assert.InDelta(t, 1.0, job.Progress, 1e-9)

	results, err := vs.GetJobResults("job-empty")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, vs.ActiveJobs())
}

func TestGetJobStatusUnknownJob(t *testing.T) {
	vs := testValidationService()

	_, err := vs.GetJobStatus("missing")
	assert.Error(t, err)

	_, err = vs.GetJobResults("missing")
	assert.Error(t, err)
}

func TestGetJobResultsStream(t *testing.T) {
	vs := testValidationService()
	vs.ProcessBatchJob("job-2", []requests.ValidateAddressRequest{
		{City: "Praha", PostalCode: "110 00", Street: "Na Příkopě", HouseNumber: "12"},
		{City: "Brno", PostalCode: "602 00", Street: "Česká", HouseNumber: "5"},
	})

	ch, err := vs.GetJobResultsStream("job-2")
	require.NoError(t, err)

	var streamed []*models.ValidationResult
	for res := range ch {
		streamed = append(streamed, res)
	}
	require.Len(t, streamed, 2)
	assert.True(t, streamed[0].Valid)
	assert.True(t, streamed[1].Valid)
}

func TestEstimateBatchProcessingTime(t *testing.T) {
	vs := testValidationService()

	assert.Equal(t, 1, vs.EstimateBatchProcessingTime(1))
	assert.Equal(t, 3, vs.EstimateBatchProcessingTime(1000))
	assert.Equal(t, 41, vs.EstimateBatchProcessingTime(20000))
}

func TestRequestKeyNormalizesVariants(t *testing.T) {
	base := RequestKey("Praha", "110 00", "Václavské náměstí", "1", "846")

	assert.Equal(t, base, RequestKey("  PRAHA  ", "11000", "vaclavske namesti", " 1 ", "846"))
	assert.Equal(t, "praha|11000|vaclavske namesti|1|846", base)
	assert.NotEqual(t, base, RequestKey("Praha", "110 00", "Václavské náměstí", "1", ""))
}

func TestFingerprintIsStable(t *testing.T) {
	key := RequestKey("Praha", "110 00", "Václavské náměstí", "1", "846")

	fp := Fingerprint(key)
	assert.True(t, strings.HasPrefix(fp, "sha256:"))
	assert.Len(t, fp, len("sha256:")+64)
	assert.Equal(t, fp, Fingerprint(key))
	assert.NotEqual(t, fp, Fingerprint(key+"x"))
}
