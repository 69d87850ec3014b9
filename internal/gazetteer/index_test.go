package gazetteer

import (
	"reflect"
	"testing"

	"github.com/address-validator/app/models"
)

func sampleRecords() []models.AddressRecord {
	return []models.AddressRecord{
		{City: "Praha", PostalCode: "110 00", Street: "Václavské náměstí", HouseNumber: "1", OrientationNumber: "846"},
		{City: "Praha", PostalCode: "110 00", Street: "Václavské náměstí", HouseNumber: "2"},
		{City: "Praha", PostalCode: "120 00", Street: "Korunní", HouseNumber: "10/2"},
		{City: "PRAHA ", PostalCode: "11000", Street: "Václavské náměstí", HouseNumber: "1", OrientationNumber: "846"},
		{City: "Brno", PostalCode: "602 00", Street: "Česká", HouseNumber: "5"},
	}
}

func TestBuildNestedIndices(t *testing.T) {
	ix := Build(sampleRecords())

	if got := ix.RecordCount(); got != 5 {
		t.Fatalf("RecordCount = %d, want 5", got)
	}

	if got := ix.Cities(); !reflect.DeepEqual(got, []string{"praha", "brno"}) {
		t.Errorf("Cities = %v, want [praha brno]", got)
	}

	if got := ix.PostalCodes("praha"); !reflect.DeepEqual(got, []string{"11000", "12000"}) {
		t.Errorf("PostalCodes(praha) = %v, want [11000 12000]", got)
	}

	if got := ix.Streets("praha", "11000"); !reflect.DeepEqual(got, []string{"vaclavske namesti"}) {
		t.Errorf("Streets = %v, want [vaclavske namesti]", got)
	}

	// Duplicate rows collapse with set semantics.
	if got := ix.HouseNumbers("praha", "11000", "vaclavske namesti"); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("HouseNumbers = %v, want [1 2]", got)
	}

	if !ix.HasOrientationNumber("praha", "11000", "vaclavske namesti", "1", "846") {
		t.Error("expected orientation number 846 under house 1")
	}
}

func TestBuildSplitsCompositeHouseNumber(t *testing.T) {
	ix := Build(sampleRecords())

	if got := ix.HouseNumbers("praha", "12000", "korunni"); !reflect.DeepEqual(got, []string{"10"}) {
		t.Errorf("HouseNumbers = %v, want [10]", got)
	}
	if got := ix.OrientationNumbers("praha", "12000", "korunni", "10"); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("OrientationNumbers = %v, want [2]", got)
	}
}

func TestDisplayFirstSeenWins(t *testing.T) {
	ix := Build(sampleRecords())

	// "Praha" is seen before "PRAHA ", so the first display string sticks.
	if got := ix.Display("praha"); got != "Praha" {
		t.Errorf("Display(praha) = %q, want %q", got, "Praha")
	}
	if got := ix.Display("praha", "11000"); got != "110 00" {
		t.Errorf("Display postal = %q, want %q", got, "110 00")
	}
	if got := ix.Display("praha", "11000", "vaclavske namesti"); got != "Václavské náměstí" {
		t.Errorf("Display street = %q, want %q", got, "Václavské náměstí")
	}
}

func TestDisplayUnknownKeyFallsBack(t *testing.T) {
	ix := Build(nil)
	if got := ix.Display("nowhere"); got != "nowhere" {
		t.Errorf("Display fallback = %q, want %q", got, "nowhere")
	}
}

func TestMissingIntermediateKeysYieldEmptySets(t *testing.T) {
	ix := Build(sampleRecords())

	if got := ix.PostalCodes("ostrava"); len(got) != 0 {
		t.Errorf("PostalCodes for unknown city = %v, want empty", got)
	}
	if got := ix.Streets("praha", "99999"); len(got) != 0 {
		t.Errorf("Streets for unknown postal = %v, want empty", got)
	}
	if got := ix.OrientationNumbers("praha", "11000", "vaclavske namesti", "2"); len(got) != 0 {
		t.Errorf("OrientationNumbers for house without co = %v, want empty", got)
	}
	if ix.HasPostalCode("ostrava", "70200") {
		t.Error("HasPostalCode should be false for unknown city")
	}
}

func TestNoOrphanKeys(t *testing.T) {
	ix := Build(sampleRecords())

	// Every postal code must be reachable from an indexed city, every street
	// from an indexed (city, postal) pair, and so on down the hierarchy.
	for _, city := range ix.Cities() {
		for _, postal := range ix.PostalCodes(city) {
			if !ix.HasPostalCode(city, postal) {
				t.Fatalf("postal %q listed but not a member under %q", postal, city)
			}
			for _, street := range ix.Streets(city, postal) {
				for _, house := range ix.HouseNumbers(city, postal, street) {
					for _, o := range ix.OrientationNumbers(city, postal, street, house) {
						if !ix.HasOrientationNumber(city, postal, street, house, o) {
							t.Fatalf("orientation %q listed but not a member", o)
						}
					}
				}
			}
		}
	}
}
