package domain

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ContactDetails holds the extracted sender or receiver fields attached to a
// parcel record.
type ContactDetails struct {
	PostID      string `json:"post_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Pincode     string `json:"pincode"`
}

// TrackingEvent is a single entry in a parcel's append-only event history.
type TrackingEvent struct {
	ID       string `json:"id"`
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"` // 12-hour clock, e.g. "03:04 PM"
	Location string `json:"location"`
	Status   string `json:"status"`
}

// NewTrackingEvent stamps an event with a unique ID and the given wall time.
func NewTrackingEvent(now time.Time, location, status string) TrackingEvent {
	return TrackingEvent{
		ID:       uuid.NewString(),
		Date:     now.Format("2006-01-02"),
		Time:     now.Format("03:04 PM"),
		Location: location,
		Status:   status,
	}
}

// ParcelRecord is the persisted document tracking one shipment. PostID is
// immutable after creation; Events is append-only; IsDelivered is mutated
// only by the external delivery-confirmation flow. GeocodedInfo and
// NearestPostOffice are snapshots taken at creation, not live references.
type ParcelRecord struct {
	PostID            string          `json:"post_id"`
	SenderDetails     *ContactDetails `json:"sender_details,omitempty"`
	ReceiverDetails   ContactDetails  `json:"receiver_details"`
	GeocodedInfo      GeocodedAddress `json:"geocoded_info"`
	NearestPostOffice *PostOffice     `json:"nearest_post_office,omitempty"`
	NearestDistanceKm float64         `json:"nearest_distance_km,omitempty"`
	IsDelivered       bool            `json:"is_delivered"`
	Events            []TrackingEvent `json:"events"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewParcelRecord assembles a parcel record at intake time. The record gets
// a fresh post ID and an initial "Post Received" event. office may be nil
// when nearest-office resolution failed; the record is still persisted.
func NewParcelRecord(
	now time.Time,
	receiver ContactDetails,
	geocoded GeocodedAddress,
	office *PostOffice,
	distanceKm float64,
) *ParcelRecord {
	postID := NewPostID(now)
	receiver.PostID = postID

	return &ParcelRecord{
		PostID:            postID,
		ReceiverDetails:   receiver,
		GeocodedInfo:      geocoded,
		NearestPostOffice: office,
		NearestDistanceKm: distanceKm,
		IsDelivered:       false,
		Events: []TrackingEvent{
			NewTrackingEvent(now, "post office", "Post Received"),
		},
		UpdatedAt: now,
	}
}

// AppendEvent adds an event to the history. Events are never removed or
// reordered.
func (r *ParcelRecord) AppendEvent(now time.Time, e TrackingEvent) {
	r.Events = append(r.Events, e)
	r.UpdatedAt = now
}

var (
	postIDMu   sync.Mutex
	lastPostID int64
)

// NewPostID returns a unique 12-digit identifier derived from the
// millisecond timestamp. The counter guard keeps IDs unique and increasing
// when two parcels are created inside the same 10ms window.
func NewPostID(now time.Time) string {
	postIDMu.Lock()
	defer postIDMu.Unlock()

	id := now.UnixMilli() / 10
	if id <= lastPostID {
		id = lastPostID + 1
	}
	lastPostID = id

	return strconv.FormatInt(id, 10)
}
