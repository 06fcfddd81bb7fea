package domain

// PostOffice is an entry in the read-only post-office directory, identified
// by (Name, PostalCode). Directory content is static reference data loaded
// at process start.
type PostOffice struct {
	Name         string   `json:"name"`
	PostalCode   string   `json:"pincode"`
	DeliveryType string   `json:"delivery_type"`
	State        string   `json:"state"`
	Location     GeoPoint `json:"location"`
	OfficeType   string   `json:"office_type"`
}
