package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"parcel-tracking-service/internal/api/dto"
	"parcel-tracking-service/internal/ports"
)

// DeliveryHandler serves tracking lookups for a persisted parcel record.
type DeliveryHandler struct {
	Parcels       ports.ParcelRepository
	PublicBaseURL string
	DeliveredURL  string
}

// CheckDelivery is the target of the QR and SMS tracking links. Delivered
// parcels redirect to the delivered page, everything else to the live
// status endpoint.
func (h *DeliveryHandler) CheckDelivery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	postID := strings.TrimSpace(r.URL.Query().Get("post_id"))
	if postID == "" {
		writeError(w, r, http.StatusBadRequest, "post_id is required")
		return
	}

	rec, err := h.Parcels.Get(r.Context(), postID)
	if err != nil {
		if errors.Is(err, ports.ErrParcelNotFound) {
			writeError(w, r, http.StatusNotFound, "no parcel record for post_id")
			return
		}
		log.Printf("check delivery failed: post_id=%s err=%v", postID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	target := h.PublicBaseURL + "/delivery_status?post_id=" + url.QueryEscape(postID)
	if rec.IsDelivered {
		target = h.DeliveredURL
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// DeliveryStatus returns the geocoded snapshot stored with the parcel.
func (h *DeliveryHandler) DeliveryStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	postID := strings.TrimSpace(r.URL.Query().Get("post_id"))
	if postID == "" {
		writeError(w, r, http.StatusBadRequest, "post_id is required")
		return
	}

	rec, err := h.Parcels.Get(r.Context(), postID)
	if err != nil {
		if errors.Is(err, ports.ErrParcelNotFound) {
			writeError(w, r, http.StatusNotFound, "no parcel record for post_id")
			return
		}
		log.Printf("delivery status failed: post_id=%s err=%v", postID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	loc := rec.GeocodedInfo.Location
	if loc == nil {
		writeError(w, r, http.StatusBadRequest, "record has no geocoded location")
		return
	}

	res := dto.DeliveryStatusResponse{
		PostID:           rec.PostID,
		FormattedAddress: rec.GeocodedInfo.FormattedAddress,
		Latitude:         loc.Latitude,
		Longitude:        loc.Longitude,
		Pincode:          rec.GeocodedInfo.PostalCode,
		City:             rec.GeocodedInfo.City,
		State:            rec.GeocodedInfo.State,
		IsDelivered:      rec.IsDelivered,
	}

	writeJSON(w, r, http.StatusOK, res)
}
