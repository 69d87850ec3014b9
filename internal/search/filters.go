// Package search backs the autocomplete endpoint with a Meilisearch index
// of the reference address dataset.
package search

import "fmt"

// FilterCity builds a filter restricting hits to one normalized city.
func FilterCity(cityKey string) string {
	return fmt.Sprintf("city_key = %q", cityKey)
}

// FilterCityPostal restricts hits to one (city, postal code) pair.
func FilterCityPostal(cityKey, postalKey string) string {
	return fmt.Sprintf("city_key = %q AND psc_key = %q", cityKey, postalKey)
}
