// Package gazetteer builds the read-only lookup indices over the reference
// address dataset that the validation cascade resolves against.
package gazetteer

import (
	"strings"

	"github.com/address-validator/app/models"
	"github.com/address-validator/internal/normalizer"
)

// keySep joins normalized components into composite index keys. The
// separator cannot appear in normalized text.
const keySep = "\x1f"

// orderedSet is a string set that remembers insertion order, so candidate
// iteration (and therefore fuzzy-match tie-breaking) is deterministic for a
// fixed dataset.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) contains(v string) bool {
	_, ok := s.seen[v]
	return ok
}

// values returns the backing slice; callers must not mutate it.
func (s *orderedSet) values() []string {
	if s == nil {
		return nil
	}
	return s.items
}

// Indices holds the four nested candidate indices plus a reverse map from
// every scoped normalized key to the first display string seen for it.
// Built once by Build and never mutated afterwards, so concurrent readers
// need no locking; dataset refreshes build a new value and swap the
// reference atomically.
type Indices struct {
	cities              *orderedSet
	postalsByCity       map[string]*orderedSet
	streetsByCityPostal map[string]*orderedSet
	housesByStreet      map[string]*orderedSet
	orientationsByHouse map[string]*orderedSet
	display             map[string]string
	recordCount         int
}

// Build indexes the dataset in a single pass. Malformed or empty fields are
// indexed as empty-string keys rather than rejected; row filtering is the
// loader's concern. Each record contributes one entry per nested level,
// with set semantics collapsing duplicates.
func Build(records []models.AddressRecord) *Indices {
	ix := &Indices{
		cities:              newOrderedSet(),
		postalsByCity:       make(map[string]*orderedSet),
		streetsByCityPostal: make(map[string]*orderedSet),
		housesByStreet:      make(map[string]*orderedSet),
		orientationsByHouse: make(map[string]*orderedSet),
		display:             make(map[string]string),
	}

	for _, rec := range records {
		city := normalizer.Normalize(rec.City)
		postal := normalizer.NormalizePostal(rec.PostalCode)
		street := normalizer.Normalize(rec.Street)

		// The house-number column may carry the composite "cp/co" form; a
		// separate co column wins over the composite's orientation part.
		houseRaw, orientationRaw := normalizer.SplitHouseNumber(rec.HouseNumber)
		if o := strings.TrimSpace(rec.OrientationNumber); o != "" {
			orientationRaw = o
		}
		house := normalizer.Normalize(houseRaw)
		orientation := normalizer.Normalize(orientationRaw)

		ix.cities.add(city)
		ix.rememberDisplay(rec.City, city)

		cityKey := key(city)
		ix.nested(ix.postalsByCity, cityKey).add(postal)
		ix.rememberDisplay(strings.TrimSpace(rec.PostalCode), city, postal)

		postalKey := key(city, postal)
		ix.nested(ix.streetsByCityPostal, postalKey).add(street)
		ix.rememberDisplay(strings.TrimSpace(rec.Street), city, postal, street)

		streetKey := key(city, postal, street)
		ix.nested(ix.housesByStreet, streetKey).add(house)
		ix.rememberDisplay(houseRaw, city, postal, street, house)

		if orientation != "" {
			houseKey := key(city, postal, street, house)
			ix.nested(ix.orientationsByHouse, houseKey).add(orientation)
			ix.rememberDisplay(orientationRaw, city, postal, street, house, orientation)
		}

		ix.recordCount++
	}

	return ix
}

func key(parts ...string) string {
	return strings.Join(parts, keySep)
}

func (ix *Indices) nested(m map[string]*orderedSet, k string) *orderedSet {
	s, ok := m[k]
	if !ok {
		s = newOrderedSet()
		m[k] = s
	}
	return s
}

// rememberDisplay records the original string for a scoped normalized key,
// first-seen wins.
func (ix *Indices) rememberDisplay(raw string, scope ...string) {
	k := key(scope...)
	if _, ok := ix.display[k]; !ok {
		ix.display[k] = raw
	}
}

// RecordCount reports how many dataset rows were indexed.
func (ix *Indices) RecordCount() int { return ix.recordCount }

// Cities returns all normalized city keys in dataset order.
func (ix *Indices) Cities() []string { return ix.cities.values() }

// HasCity reports exact membership of a normalized city key.
func (ix *Indices) HasCity(city string) bool { return ix.cities.contains(city) }

// PostalCodes returns the normalized postal codes observed under a city.
// Unknown cities yield an empty set, never a fault.
func (ix *Indices) PostalCodes(city string) []string {
	return ix.postalsByCity[key(city)].values()
}

// HasPostalCode reports exact membership of a postal code under a city.
func (ix *Indices) HasPostalCode(city, postal string) bool {
	s, ok := ix.postalsByCity[key(city)]
	return ok && s.contains(postal)
}

// Streets returns the normalized street keys under (city, postal).
func (ix *Indices) Streets(city, postal string) []string {
	return ix.streetsByCityPostal[key(city, postal)].values()
}

// HasStreet reports exact membership of a street under (city, postal).
func (ix *Indices) HasStreet(city, postal, street string) bool {
	s, ok := ix.streetsByCityPostal[key(city, postal)]
	return ok && s.contains(street)
}

// HouseNumbers returns the normalized house numbers under (city, postal, street).
func (ix *Indices) HouseNumbers(city, postal, street string) []string {
	return ix.housesByStreet[key(city, postal, street)].values()
}

// HasHouseNumber reports exact membership of a house number.
func (ix *Indices) HasHouseNumber(city, postal, street, house string) bool {
	s, ok := ix.housesByStreet[key(city, postal, street)]
	return ok && s.contains(house)
}

// OrientationNumbers returns the normalized orientation numbers under the
// full (city, postal, street, house) key.
func (ix *Indices) OrientationNumbers(city, postal, street, house string) []string {
	return ix.orientationsByHouse[key(city, postal, street, house)].values()
}

// HasOrientationNumber reports exact membership of an orientation number.
func (ix *Indices) HasOrientationNumber(city, postal, street, house, orientation string) bool {
	s, ok := ix.orientationsByHouse[key(city, postal, street, house)]
	return ok && s.contains(orientation)
}

// Display resolves the original dataset string for the last component of
// parts, scoped by the preceding ones. Falls back to the normalized value
// itself if the key was never indexed.
func (ix *Indices) Display(parts ...string) string {
	if d, ok := ix.display[key(parts...)]; ok {
		return d
	}
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
