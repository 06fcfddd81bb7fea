package ports

import (
	"context"

	"parcel-tracking-service/internal/domain"
)

// Port: free-text address geocoding.
type Geocoder interface {
	// Geocode resolves a free-text address plus postal-code hint into a
	// normalized address record. Returns an error on service failure or an
	// empty result set; partial field population is not an error.
	Geocode(ctx context.Context, address, postalCodeHint string) (domain.GeocodedAddress, error)
}
