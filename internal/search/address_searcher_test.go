package search

import (
	"testing"

	"github.com/address-validator/app/models"
	"github.com/stretchr/testify/assert"
)

func TestRecordDocument(t *testing.T) {
	rec := models.AddressRecord{
		City:              "Praha",
		PostalCode:        "110 00",
		Street:            "Václavské náměstí",
		HouseNumber:       "1",
		OrientationNumber: "846",
	}

	doc := RecordDocument(7, rec)

	assert.Equal(t, "rec_7", doc["id"])
	assert.Equal(t, "Praha", doc["city"])
	assert.Equal(t, "110 00", doc["psc"])
	assert.Equal(t, "Václavské náměstí", doc["street"])
	assert.Equal(t, "1", doc["cp"])
	assert.Equal(t, "846", doc["co"])

	// Filterable keys are normalized.
	assert.Equal(t, "praha", doc["city_key"])
	assert.Equal(t, "11000", doc["psc_key"])
	assert.Equal(t, "vaclavske namesti", doc["street_key"])
}

func TestFilterHelpers(t *testing.T) {
	assert.Equal(t, `city_key = "praha"`, FilterCity("praha"))
	assert.Equal(t, `city_key = "praha" AND psc_key = "11000"`, FilterCityPostal("praha", "11000"))
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	as := &AddressSearcher{}

	_, err := as.Search("", 10)
	assert.Error(t, err)

	_, err = as.SearchInCity("", "Praha", 10)
	assert.Error(t, err)
}
