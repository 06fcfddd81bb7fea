package domain

// GeocodedAddress is the result of a single geocoding lookup. Any field may
// be empty; Location is nil when the service returned no usable coordinates.
// Callers must treat postal code, city and state as best-effort.
type GeocodedAddress struct {
	FormattedAddress string    `json:"formatted_address"`
	Location         *GeoPoint `json:"location,omitempty"`
	PostalCode       string    `json:"pincode"`
	City             string    `json:"city"`
	State            string    `json:"state"`
}

// ExtractedAddress holds the structured fields pulled out of OCR text by the
// language model. All fields are best-effort and may be empty.
type ExtractedAddress struct {
	Name        string `json:"Name"`
	PhoneNumber string `json:"PhoneNumber"`
	Address     string `json:"Address"`
	Pincode     string `json:"Pincode"`
}
