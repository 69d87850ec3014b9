package models

// Cascade stages, in resolution order. The failing stage is reported on
// Invalid results as a machine-readable category.
const (
	StageCity              = "city"
	StagePostalCode        = "postal_code"
	StageStreet            = "street"
	StageHouseNumber       = "house_number"
	StageOrientationNumber = "orientation_number"
)

// Rejection reasons per stage.
const (
	ReasonCityNotFound              = "city not found"
	ReasonPostalCodeMismatch        = "postal code does not match city"
	ReasonStreetNotFound            = "street not found"
	ReasonHouseNumberNotFound       = "house number not found"
	ReasonOrientationNumberNotFound = "orientation number not found"
)

// ValidationResult is the single outcome value of the resolution cascade.
// Valid results carry the dataset display values of the resolved address;
// invalid results carry the first failing stage, a reason and, where the
// candidate universe is small enough to be useful, suggestions.
// The engine never signals failure any other way.
type ValidationResult struct {
	Valid             bool     `json:"valid" bson:"valid"`
	City              string   `json:"city,omitempty" bson:"city,omitempty"`
	PostalCode        string   `json:"psc,omitempty" bson:"psc,omitempty"`
	Street            string   `json:"street,omitempty" bson:"street,omitempty"`
	HouseNumber       string   `json:"cp,omitempty" bson:"cp,omitempty"`
	OrientationNumber string   `json:"co,omitempty" bson:"co,omitempty"`
	Stage             string   `json:"stage,omitempty" bson:"stage,omitempty"`
	Reason            string   `json:"reason,omitempty" bson:"reason,omitempty"`
	Suggestions       []string `json:"suggestions,omitempty" bson:"suggestions,omitempty"`
}

// NewValidResult builds a success result from resolved display values.
func NewValidResult(city, postalCode, street, houseNumber, orientationNumber string) *ValidationResult {
	return &ValidationResult{
		Valid:             true,
		City:              city,
		PostalCode:        postalCode,
		Street:            street,
		HouseNumber:       houseNumber,
		OrientationNumber: orientationNumber,
	}
}

// NewInvalidResult builds a rejection for the given stage. Suggestions may
// be nil when no useful candidate set exists (e.g. the city universe).
func NewInvalidResult(stage, reason string, suggestions []string) *ValidationResult {
	return &ValidationResult{
		Valid:       false,
		Stage:       stage,
		Reason:      reason,
		Suggestions: suggestions,
	}
}
