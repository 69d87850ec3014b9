package models

// AddressRecord is one row of the reference dataset, all fields kept as the
// raw display strings sourced from the CSV. Records carry no identity beyond
// the field tuple; duplicates collapse during index construction.
type AddressRecord struct {
	City              string `json:"city" bson:"city"`
	PostalCode        string `json:"psc" bson:"psc"`
	Street            string `json:"street" bson:"street"`
	HouseNumber       string `json:"cp" bson:"cp"`
	OrientationNumber string `json:"co,omitempty" bson:"co,omitempty"`
}
