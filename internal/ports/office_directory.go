package ports

import (
	"context"

	"parcel-tracking-service/internal/domain"
)

// Port: read-only lookup of candidate post offices by postal code.
type OfficeDirectory interface {
	// Return all offices whose stored postal code exactly equals code.
	// Rows with unparseable coordinates are excluded; an empty result is a
	// normal value, not an error.
	FindByPostalCode(ctx context.Context, code string) ([]domain.PostOffice, error)
}
