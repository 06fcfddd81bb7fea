package services

import (
	"context"
	"fmt"

	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/ports"
)

// NotFoundReason tags the expected ways nearest-office resolution can fail.
type NotFoundReason string

const (
	ReasonInvalidGeocode NotFoundReason = "invalid_geocode"
	ReasonNoOffices      NotFoundReason = "no_offices_for_postal_code"
	ReasonNoValidOffices NotFoundReason = "no_valid_candidates"
)

// ResolutionResult is either a resolved office with its distance or a tagged
// failure reason. It is computed once per request and never cached.
type ResolutionResult struct {
	Office     *domain.PostOffice
	DistanceKm float64
	Reason     NotFoundReason
}

// Found reports whether an office was resolved.
func (r ResolutionResult) Found() bool { return r.Office != nil }

// ResolveNearest selects the post office nearest to a geocoded address among
// the directory's candidates for postalCode.
//
// Expected failure modes (invalid geocode, no candidates) come back as a
// tagged NotFound result; only directory I/O faults are returned as errors,
// fatal to the current request.
func ResolveNearest(
	ctx context.Context,
	dir ports.OfficeDirectory,
	postalCode string,
	geocoded domain.GeocodedAddress,
) (ResolutionResult, error) {
	if geocoded.Location == nil || !geocoded.Location.Valid() {
		return ResolutionResult{Reason: ReasonInvalidGeocode}, nil
	}
	origin := *geocoded.Location

	offices, err := dir.FindByPostalCode(ctx, postalCode)
	if err != nil {
		return ResolutionResult{}, fmt.Errorf("resolve nearest: find offices for %q: %w", postalCode, err)
	}
	if len(offices) == 0 {
		return ResolutionResult{Reason: ReasonNoOffices}, nil
	}

	var nearest *domain.PostOffice
	minDistance := 0.0

	// Strictly-minimal selection: on equal distances the first-encountered
	// candidate wins, keeping the result deterministic over the directory's
	// query ordering.
	for i := range offices {
		if !offices[i].Location.Valid() {
			continue
		}

		d := domain.DistanceKm(origin, offices[i].Location)
		if nearest == nil || d < minDistance {
			nearest = &offices[i]
			minDistance = d
		}
	}

	if nearest == nil {
		return ResolutionResult{Reason: ReasonNoValidOffices}, nil
	}

	office := *nearest
	return ResolutionResult{Office: &office, DistanceKm: minDistance}, nil
}
