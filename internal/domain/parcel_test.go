package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParcelRecord(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	office := &PostOffice{
		Name:       "Bangalore GPO",
		PostalCode: "560001",
		Location:   GeoPoint{Latitude: 12.9833, Longitude: 77.5833},
	}

	rec := NewParcelRecord(
		now,
		ContactDetails{Name: "Asha", PhoneNumber: "9876543210", Address: "221B Baker Street", Pincode: "560001"},
		GeocodedAddress{
			FormattedAddress: "221B Baker Street, Bengaluru",
			Location:         &GeoPoint{Latitude: 12.9716, Longitude: 77.5946},
			PostalCode:       "560001",
		},
		office,
		1.2,
	)

	require.Len(t, rec.PostID, 12)
	assert.Equal(t, rec.PostID, rec.ReceiverDetails.PostID)
	assert.False(t, rec.IsDelivered)
	assert.Nil(t, rec.SenderDetails)
	assert.Equal(t, "Bangalore GPO", rec.NearestPostOffice.Name)

	require.Len(t, rec.Events, 1)
	assert.Equal(t, "Post Received", rec.Events[0].Status)
	assert.Equal(t, "post office", rec.Events[0].Location)
	assert.Equal(t, "2026-03-14", rec.Events[0].Date)
	assert.Equal(t, "03:09 PM", rec.Events[0].Time)
	assert.NotEmpty(t, rec.Events[0].ID)
}

func TestAppendEvent(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	rec := NewParcelRecord(now, ContactDetails{Name: "Asha"}, GeocodedAddress{}, nil, 0)

	later := now.Add(2 * time.Hour)
	rec.AppendEvent(later, NewTrackingEvent(later, "sorting hub", "In Transit"))

	require.Len(t, rec.Events, 2)
	assert.Equal(t, "In Transit", rec.Events[1].Status)
	assert.Equal(t, later, rec.UpdatedAt)
}

func TestNewPostIDUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})

	// Same wall-clock instant must still yield distinct, increasing IDs.
	for i := 0; i < 100; i++ {
		id := NewPostID(now)
		require.Len(t, id, 12)
		_, dup := seen[id]
		require.False(t, dup, "duplicate post id %s", id)
		seen[id] = struct{}{}
	}
}
