// Package normalizer canonicalizes address text so that lookups and
// comparisons are case-, diacritic- and whitespace-insensitive.
package normalizer

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Normalize returns the canonical lookup key for a text field:
// trimmed, lower-cased, diacritics folded to ASCII.
// It is total: empty or absent input normalizes to "".
func Normalize(text string) string {
	return strings.ToLower(unidecode.Unidecode(strings.TrimSpace(text)))
}

// NormalizePostal canonicalizes a postal code by stripping all whitespace,
// internal included. Postal codes are digit strings, so no case or
// diacritic folding applies.
func NormalizePostal(text string) string {
	return strings.Join(strings.Fields(text), "")
}

// SplitHouseNumber divides a composite house number on the first '/'.
// "123/4" yields ("123", "4"); a plain "123" yields ("123", "").
func SplitHouseNumber(text string) (house string, orientation string) {
	house = strings.TrimSpace(text)
	if i := strings.IndexByte(house, '/'); i >= 0 {
		orientation = strings.TrimSpace(house[i+1:])
		house = strings.TrimSpace(house[:i])
	}
	return house, orientation
}
