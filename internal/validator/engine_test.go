package validator

import (
	"reflect"
	"testing"

	"github.com/address-validator/app/models"
	"github.com/address-validator/internal/gazetteer"
	"go.uber.org/zap"
)

func testEngine(records []models.AddressRecord) *Engine {
	return NewEngine(gazetteer.Build(records), DefaultConfig(), zap.NewNop())
}

func pragueEngine() *Engine {
	return testEngine([]models.AddressRecord{
		{City: "Praha", PostalCode: "110 00", Street: "Václavské náměstí", HouseNumber: "1", OrientationNumber: "846"},
		{City: "Praha", PostalCode: "110 00", Street: "Na Příkopě", HouseNumber: "12"},
		{City: "Praha", PostalCode: "120 00", Street: "Korunní", HouseNumber: "10", OrientationNumber: "2"},
		{City: "Brno", PostalCode: "602 00", Street: "Česká", HouseNumber: "5"},
	})
}

func TestValidateFullyValidAddress(t *testing.T) {
	res := pragueEngine().Validate("Praha", "110 00", "Václavské náměstí", "1", "846")

	if !res.Valid {
		t.Fatalf("expected valid, got stage=%q reason=%q", res.Stage, res.Reason)
	}
	if res.City != "Praha" || res.PostalCode != "110 00" || res.Street != "Václavské náměstí" {
		t.Errorf("display payload = %q %q %q", res.City, res.PostalCode, res.Street)
	}
	if res.HouseNumber != "1" || res.OrientationNumber != "846" {
		t.Errorf("numbers = %q/%q, want 1/846", res.HouseNumber, res.OrientationNumber)
	}
	if res.Stage != "" || res.Reason != "" || res.Suggestions != nil {
		t.Errorf("valid result carries failure fields: %+v", res)
	}
}

func TestValidateNormalizationInvariance(t *testing.T) {
	e := pragueEngine()

	// Casing, diacritics and postal whitespace must not change the outcome.
	variants := [][5]string{
		{"Praha", "110 00", "Václavské náměstí", "1", "846"},
		{"  PRAHA  ", "11000", "vaclavske namesti", "1", "846"},
		{"praha", "1 1 0 0 0", "VÁCLAVSKÉ NÁMĚSTÍ", " 1 ", "846"},
	}
	want := e.Validate(variants[0][0], variants[0][1], variants[0][2], variants[0][3], variants[0][4])
	for _, v := range variants[1:] {
		got := e.Validate(v[0], v[1], v[2], v[3], v[4])
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Validate(%v) = %+v, want %+v", v, got, want)
		}
	}
}

func TestValidateFuzzyCityCorrection(t *testing.T) {
	res := pragueEngine().Validate("Prhaa", "110 00", "Václavské náměstí", "1", "")
	if !res.Valid {
		t.Fatalf("typo city should fuzzy-correct, got stage=%q", res.Stage)
	}
	if res.City != "Praha" {
		t.Errorf("City = %q, want dataset display Praha", res.City)
	}
}

func TestValidateUnknownCityNoSuggestions(t *testing.T) {
	res := pragueEngine().Validate("Atlantis", "110 00", "Václavské náměstí", "1", "")
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if res.Stage != models.StageCity || res.Reason != models.ReasonCityNotFound {
		t.Errorf("stage/reason = %q/%q", res.Stage, res.Reason)
	}
	if res.Suggestions != nil {
		t.Errorf("city failures carry no suggestions, got %v", res.Suggestions)
	}
}

func TestValidatePostalMismatchSuggestsCityCodes(t *testing.T) {
	res := pragueEngine().Validate("Praha", "999 99", "Václavské náměstí", "1", "")
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if res.Stage != models.StagePostalCode || res.Reason != models.ReasonPostalCodeMismatch {
		t.Errorf("stage/reason = %q/%q", res.Stage, res.Reason)
	}
	if !reflect.DeepEqual(res.Suggestions, []string{"110 00", "120 00"}) {
		t.Errorf("Suggestions = %v, want the city's postal codes", res.Suggestions)
	}
}

func TestValidatePostalNeverFuzzyMatched(t *testing.T) {
	// A single transposed digit is one edit away but must still be rejected.
	res := pragueEngine().Validate("Praha", "110 10", "Václavské náměstí", "1", "")
	if res.Valid {
		t.Fatal("transposed postal code must not silently correct")
	}
	if res.Stage != models.StagePostalCode {
		t.Errorf("Stage = %q, want %q", res.Stage, models.StagePostalCode)
	}
}

func TestValidateSinglePostalCodeLeniency(t *testing.T) {
	// Brno has exactly one code in the dataset, so a wrong one substitutes.
	res := pragueEngine().Validate("Brno", "999 99", "Česká", "5", "")
	if !res.Valid {
		t.Fatalf("expected silent substitution, got stage=%q", res.Stage)
	}
	if res.PostalCode != "602 00" {
		t.Errorf("PostalCode = %q, want 602 00", res.PostalCode)
	}
}

func TestValidateStreetFailureSuggestsStreets(t *testing.T) {
	// Too little of the street name survives for the threshold.
	res := pragueEngine().Validate("Praha", "110 00", "Vaclavske nam", "1", "")
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if res.Stage != models.StageStreet || res.Reason != models.ReasonStreetNotFound {
		t.Errorf("stage/reason = %q/%q", res.Stage, res.Reason)
	}
	// All streets under (Praha, 110 00), most similar first, as displays.
	if !reflect.DeepEqual(res.Suggestions, []string{"Václavské náměstí", "Na Příkopě"}) {
		t.Errorf("Suggestions = %v", res.Suggestions)
	}
}

func TestValidateStreetTypoCorrects(t *testing.T) {
	res := pragueEngine().Validate("Praha", "110 00", "Vaclavske namest", "1", "")
	if !res.Valid {
		t.Fatalf("one dropped letter should clear the threshold, got stage=%q", res.Stage)
	}
	if res.Street != "Václavské náměstí" {
		t.Errorf("Street = %q, want dataset display", res.Street)
	}
}

func TestValidateHouseNumberFailureSuggestsHouses(t *testing.T) {
	res := pragueEngine().Validate("Praha", "110 00", "Václavské náměstí", "2", "")
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if res.Stage != models.StageHouseNumber || res.Reason != models.ReasonHouseNumberNotFound {
		t.Errorf("stage/reason = %q/%q", res.Stage, res.Reason)
	}
	if !reflect.DeepEqual(res.Suggestions, []string{"1"}) {
		t.Errorf("Suggestions = %v, want [1]", res.Suggestions)
	}
}

func TestValidateOrientationNumberOptional(t *testing.T) {
	e := pragueEngine()

	// Absent orientation skips the stage entirely.
	res := e.Validate("Praha", "110 00", "Václavské náměstí", "1", "")
	if !res.Valid {
		t.Fatalf("expected valid without orientation, got stage=%q", res.Stage)
	}
	if res.OrientationNumber != "" {
		t.Errorf("OrientationNumber = %q, want empty", res.OrientationNumber)
	}

	// Present but wrong fails with suggestions.
	res = e.Validate("Praha", "110 00", "Václavské náměstí", "1", "999")
	if res.Valid || res.Stage != models.StageOrientationNumber {
		t.Fatalf("got valid=%v stage=%q", res.Valid, res.Stage)
	}
	if !reflect.DeepEqual(res.Suggestions, []string{"846"}) {
		t.Errorf("Suggestions = %v, want [846]", res.Suggestions)
	}
}

func TestValidateCompositeHouseNumberInput(t *testing.T) {
	res := pragueEngine().Validate("Praha", "120 00", "Korunní", "10/2", "")
	if !res.Valid {
		t.Fatalf("composite cp/co should validate, got stage=%q reason=%q", res.Stage, res.Reason)
	}
	if res.HouseNumber != "10" || res.OrientationNumber != "2" {
		t.Errorf("numbers = %q/%q, want 10/2", res.HouseNumber, res.OrientationNumber)
	}
}

func TestValidateEarlyTermination(t *testing.T) {
	// With the city unresolvable, later garbage must never surface: the
	// result names the city stage only.
	res := pragueEngine().Validate("Atlantis", "garbage", "garbage", "garbage", "garbage")
	if res.Valid || res.Stage != models.StageCity {
		t.Errorf("got valid=%v stage=%q, want city failure", res.Valid, res.Stage)
	}
}

func TestValidateIdempotent(t *testing.T) {
	e := pragueEngine()
	first := e.Validate("Praha", "110 00", "Václavské náměstí", "1", "846")
	second := e.Validate("Praha", "110 00", "Václavské náměstí", "1", "846")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated validation differs: %+v vs %+v", first, second)
	}
}

func TestSwapServesNewIndices(t *testing.T) {
	e := pragueEngine()

	res := e.Validate("Ostrava", "702 00", "Stodolní", "1", "")
	if res.Valid {
		t.Fatal("Ostrava should be unknown before the swap")
	}

	e.Swap(gazetteer.Build([]models.AddressRecord{
		{City: "Ostrava", PostalCode: "702 00", Street: "Stodolní", HouseNumber: "1"},
	}))

	res = e.Validate("Ostrava", "702 00", "Stodolní", "1", "")
	if !res.Valid {
		t.Fatalf("expected valid after swap, got stage=%q", res.Stage)
	}
	if e.Indices().RecordCount() != 1 {
		t.Errorf("RecordCount = %d, want 1", e.Indices().RecordCount())
	}
}
