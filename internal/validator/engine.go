// Package validator implements the five-stage address resolution cascade:
// city, postal code, street, house number, orientation number. City and
// street fall back to approximate matching; the numeric stages are exact
// only. Every outcome is returned as a ValidationResult, never an error.
package validator

import (
	"sort"
	"sync/atomic"

	"github.com/address-validator/app/models"
	"github.com/address-validator/internal/gazetteer"
	"github.com/address-validator/internal/matcher"
	"github.com/address-validator/internal/normalizer"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"
)

// Config carries the per-stage similarity thresholds, in [0,100].
type Config struct {
	CityThreshold   int `yaml:"city_threshold" json:"city_threshold"`
	StreetThreshold int `yaml:"street_threshold" json:"street_threshold"`
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{CityThreshold: 80, StreetThreshold: 85}
}

// Engine resolves addresses against a shared, immutable set of indices.
// The indices reference is swapped atomically on dataset reload, so any
// number of Validate calls may run concurrently without locking.
type Engine struct {
	indices atomic.Pointer[gazetteer.Indices]
	cfg     Config
	logger  *zap.Logger
}

// NewEngine creates an engine serving the given indices.
func NewEngine(ix *gazetteer.Indices, cfg Config, logger *zap.Logger) *Engine {
	e := &Engine{cfg: cfg, logger: logger}
	e.indices.Store(ix)
	return e
}

// Swap replaces the indices with a freshly built set. In-flight Validate
// calls keep reading the indices they loaded; new calls see the new set.
func (e *Engine) Swap(ix *gazetteer.Indices) {
	e.indices.Store(ix)
	e.logger.Info("address indices swapped", zap.Int("records", ix.RecordCount()))
}

// Indices returns the currently served indices.
func (e *Engine) Indices() *gazetteer.Indices {
	return e.indices.Load()
}

// Validate runs the cascade over the five input fields. The orientation
// number is optional; it may also ride along in the house-number field as
// "cp/co". Stages terminate early: the first failing stage is reported and
// later stages are never evaluated.
func (e *Engine) Validate(city, postalCode, street, houseNumber, orientationNumber string) *models.ValidationResult {
	ix := e.indices.Load()

	// Stage 1: city. Exact membership after normalization short-circuits
	// fuzzy scoring; no suggestions on failure, the city universe is too
	// large to be useful.
	cityKey := normalizer.Normalize(city)
	if !ix.HasCity(cityKey) {
		m, ok := matcher.BestMatch(cityKey, ix.Cities(), e.cfg.CityThreshold)
		if !ok {
			e.logger.Debug("validation rejected", zap.String("stage", models.StageCity), zap.String("city", city))
			return models.NewInvalidResult(models.StageCity, models.ReasonCityNotFound, nil)
		}
		cityKey = m.Key
	}

	// Stage 2: postal code. Never fuzzy-matched; digit transpositions must
	// not silently "correct". A city with exactly one known code
	// substitutes it silently (documented leniency).
	postalKey := normalizer.NormalizePostal(postalCode)
	if !ix.HasPostalCode(cityKey, postalKey) {
		postals := ix.PostalCodes(cityKey)
		if len(postals) == 1 {
			postalKey = postals[0]
		} else {
			e.logger.Debug("validation rejected", zap.String("stage", models.StagePostalCode), zap.String("psc", postalCode))
			return models.NewInvalidResult(models.StagePostalCode, models.ReasonPostalCodeMismatch,
				e.suggestions(ix, postalKey, postals, cityKey))
		}
	}

	// Stage 3: street. Exact membership, then fuzzy against the candidate
	// set scoped to (city, postal).
	streetKey := normalizer.Normalize(street)
	if !ix.HasStreet(cityKey, postalKey, streetKey) {
		streets := ix.Streets(cityKey, postalKey)
		m, ok := matcher.BestMatch(streetKey, streets, e.cfg.StreetThreshold)
		if !ok {
			e.logger.Debug("validation rejected", zap.String("stage", models.StageStreet), zap.String("street", street))
			return models.NewInvalidResult(models.StageStreet, models.ReasonStreetNotFound,
				e.suggestions(ix, streetKey, streets, cityKey, postalKey))
		}
		streetKey = m.Key
	}

	// Stage 4: house number. Exact only.
	houseRaw, orientationFromHouse := normalizer.SplitHouseNumber(houseNumber)
	if orientationNumber == "" {
		orientationNumber = orientationFromHouse
	}
	houseKey := normalizer.Normalize(houseRaw)
	if !ix.HasHouseNumber(cityKey, postalKey, streetKey, houseKey) {
		houses := ix.HouseNumbers(cityKey, postalKey, streetKey)
		e.logger.Debug("validation rejected", zap.String("stage", models.StageHouseNumber), zap.String("cp", houseNumber))
		return models.NewInvalidResult(models.StageHouseNumber, models.ReasonHouseNumberNotFound,
			e.suggestions(ix, houseKey, houses, cityKey, postalKey, streetKey))
	}

	// Stage 5: orientation number. Skipped entirely when absent; exact
	// only when present.
	orientationKey := normalizer.Normalize(orientationNumber)
	orientationDisplay := ""
	if orientationKey != "" {
		if !ix.HasOrientationNumber(cityKey, postalKey, streetKey, houseKey, orientationKey) {
			orientations := ix.OrientationNumbers(cityKey, postalKey, streetKey, houseKey)
			e.logger.Debug("validation rejected", zap.String("stage", models.StageOrientationNumber), zap.String("co", orientationNumber))
			return models.NewInvalidResult(models.StageOrientationNumber, models.ReasonOrientationNumberNotFound,
				e.suggestions(ix, orientationKey, orientations, cityKey, postalKey, streetKey, houseKey))
		}
		orientationDisplay = ix.Display(cityKey, postalKey, streetKey, houseKey, orientationKey)
	}

	return models.NewValidResult(
		ix.Display(cityKey),
		ix.Display(cityKey, postalKey),
		ix.Display(cityKey, postalKey, streetKey),
		ix.Display(cityKey, postalKey, streetKey, houseKey),
		orientationDisplay,
	)
}

// suggestions renders the full candidate set as display strings, ordered
// most similar to the failed query first. Ordering is stable, so equal
// scores keep dataset order.
func (e *Engine) suggestions(ix *gazetteer.Indices, query string, candidates []string, scope ...string) []string {
	if len(candidates) == 0 {
		return nil
	}

	type scoredSuggestion struct {
		display string
		score   float64
	}
	items := make([]scoredSuggestion, len(candidates))
	for i, candidate := range candidates {
		parts := make([]string, 0, len(scope)+1)
		parts = append(parts, scope...)
		parts = append(parts, candidate)
		items[i] = scoredSuggestion{
			display: ix.Display(parts...),
			score:   smetrics.JaroWinkler(query, candidate, 0.7, 4),
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.display
	}
	return out
}
