package requests

// ValidateAddressRequest is a single address to validate. Field names follow
// the dataset: cp is the house number, co the orientation number.
type ValidateAddressRequest struct {
	City              string          `json:"city" binding:"required"`
	PostalCode        string          `json:"psc" binding:"required"`
	Street            string          `json:"street" binding:"required"`
	HouseNumber       string          `json:"cp" binding:"required"`
	OrientationNumber string          `json:"co,omitempty"`
	Options           ValidateOptions `json:"options,omitempty"`
}

// ValidateOptions tunes a single validation call.
type ValidateOptions struct {
	UseCache bool `json:"use_cache,omitempty"`
}

// BatchValidateRequest validates a list of addresses asynchronously.
type BatchValidateRequest struct {
	Addresses []ValidateAddressRequest `json:"addresses" binding:"required,min=1,max=20000"`
	Options   ValidateOptions          `json:"options,omitempty"`
}

// ReloadDatasetRequest triggers a dataset reload; an empty source reloads
// from the configured one.
type ReloadDatasetRequest struct {
	Source string `json:"source,omitempty"`
}

// SearchAddressRequest is a free-text autocomplete query.
type SearchAddressRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit,omitempty"`
}
