package ports

import (
	"context"
	"errors"

	"parcel-tracking-service/internal/domain"
)

// ErrParcelNotFound is returned by Get when no record exists for a post ID.
var ErrParcelNotFound = errors.New("parcel record not found")

// Port: document-style store of parcel records keyed by post ID.
type ParcelRepository interface {
	// Create persists a new record. The post ID must not already exist.
	Create(ctx context.Context, rec *domain.ParcelRecord) error

	// Get returns the record for postID, or ErrParcelNotFound.
	Get(ctx context.Context, postID string) (*domain.ParcelRecord, error)

	// MergeSenderDetails sets the sender details on an existing record,
	// leaving every other field untouched.
	MergeSenderDetails(ctx context.Context, postID string, sender domain.ContactDetails) error
}
