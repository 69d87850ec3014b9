package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/address-validator/app/models"
	"github.com/address-validator/internal/normalizer"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

// AddressSearcher serves free-text autocomplete over the reference address
// dataset via Meilisearch. It is a convenience surface next to the
// validation cascade, not part of it.
type AddressSearcher struct {
	client    meilisearch.ServiceManager
	logger    *zap.Logger
	indexName string
	timeout   time.Duration
}

// SearchConfig configures the Meilisearch connection.
type SearchConfig struct {
	Host          string
	APIKey        string
	IndexName     string
	Timeout       time.Duration
	MaxCandidates int
}

// NewAddressSearcher connects to Meilisearch and verifies it is healthy.
func NewAddressSearcher(config SearchConfig, logger *zap.Logger) (*AddressSearcher, error) {
	client := meilisearch.New(config.Host, meilisearch.WithAPIKey(config.APIKey))

	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("connect to meilisearch: %w", err)
	}

	return &AddressSearcher{
		client:    client,
		logger:    logger,
		indexName: config.IndexName,
		timeout:   config.Timeout,
	}, nil
}

// BuildIndexes configures the address index: searchable display fields,
// filterable normalized keys, typo tolerance tuned for short Czech street
// names.
func (as *AddressSearcher) BuildIndexes() error {
	index := as.client.Index(as.indexName)

	searchableAttrs := []string{"city", "street", "psc", "cp", "co"}
	filterableAttrs := []string{"city_key", "psc_key", "street_key"}
	sortableAttrs := []string{"city_key", "psc_key"}
	rankingRules := []string{"words", "typo", "proximity", "attribute", "sort", "exactness"}
	synonyms := map[string][]string{
		"nam":  {"namesti"},
		"nabr": {"nabrezi"},
		"ul":   {"ulice"},
	}
	enabled := true
	oneTypo := int64(4)
	twoTypos := int64(8)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: searchableAttrs,
		FilterableAttributes: filterableAttrs,
		SortableAttributes:   sortableAttrs,
		RankingRules:         rankingRules,
		Synonyms:             synonyms,
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: enabled,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  oneTypo,
				TwoTypos: twoTypos,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("configure address index: %w", err)
	}

	as.logger.Info("configured meilisearch address index", zap.Int64("task_uid", task.TaskUID))
	return nil
}

// SeedRecords loads the dataset into the index in batches of 1000.
func (as *AddressSearcher) SeedRecords(records []models.AddressRecord) error {
	if len(records) == 0 {
		return errors.New("no records to seed")
	}

	index := as.client.Index(as.indexName)

	documents := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		documents[i] = RecordDocument(i, rec)
	}

	batchSize := 1000
	for i := 0; i < len(documents); i += batchSize {
		end := i + batchSize
		if end > len(documents) {
			end = len(documents)
		}

		batch := documents[i:end]
		task, err := index.AddDocuments(batch, "id")
		if err != nil {
			return fmt.Errorf("add documents batch %d-%d: %w", i, end, err)
		}

		as.logger.Debug("added document batch",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}

	as.logger.Info("seeded address index", zap.Int("total_documents", len(documents)))
	return nil
}

// Search runs a free-text query and returns matching dataset records.
func (as *AddressSearcher) Search(query string, limit int) ([]models.AddressRecord, error) {
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	index := as.client.Index(as.indexName)

	result, err := index.Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search address index: %w", err)
	}

	return parseHits(result), nil
}

// SearchInCity restricts the query to one city.
func (as *AddressSearcher) SearchInCity(query, city string, limit int) ([]models.AddressRecord, error) {
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	index := as.client.Index(as.indexName)

	result, err := index.Search(query, &meilisearch.SearchRequest{
		Limit:  int64(limit),
		Filter: FilterCity(normalizer.Normalize(city)),
	})
	if err != nil {
		return nil, fmt.Errorf("search address index in city: %w", err)
	}

	return parseHits(result), nil
}

// Healthy reports whether Meilisearch is reachable.
func (as *AddressSearcher) Healthy() bool {
	_, err := as.client.Health()
	return err == nil
}

// RecordDocument converts a dataset record into the indexed document shape.
// Display fields are searchable; normalized keys are filterable.
func RecordDocument(id int, rec models.AddressRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":         fmt.Sprintf("rec_%d", id),
		"city":       rec.City,
		"psc":        rec.PostalCode,
		"street":     rec.Street,
		"cp":         rec.HouseNumber,
		"co":         rec.OrientationNumber,
		"city_key":   normalizer.Normalize(rec.City),
		"psc_key":    normalizer.NormalizePostal(rec.PostalCode),
		"street_key": normalizer.Normalize(rec.Street),
	}
}

// parseHits maps search hits back to dataset records.
func parseHits(result *meilisearch.SearchResponse) []models.AddressRecord {
	var records []models.AddressRecord

	for _, hit := range result.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}

		rec := models.AddressRecord{}
		if v, ok := hitMap["city"].(string); ok {
			rec.City = v
		}
		if v, ok := hitMap["psc"].(string); ok {
			rec.PostalCode = v
		}
		if v, ok := hitMap["street"].(string); ok {
			rec.Street = v
		}
		if v, ok := hitMap["cp"].(string); ok {
			rec.HouseNumber = v
		}
		if v, ok := hitMap["co"].(string); ok {
			rec.OrientationNumber = v
		}

		records = append(records, rec)
	}

	return records
}
