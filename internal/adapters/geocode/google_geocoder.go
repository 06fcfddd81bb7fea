package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/platform/obs"
)

// Cache fronts the geocoder with previously resolved addresses. A nil cache
// disables caching; cache faults degrade to a live lookup.
type Cache interface {
	Get(ctx context.Context, key string) (domain.GeocodedAddress, bool, error)
	Put(ctx context.Context, key string, addr domain.GeocodedAddress) error
}

// GoogleGeocoder implements the Geocoder port using the Google Geocoding
// JSON API. Safe for concurrent use.
type GoogleGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	cache   Cache
}

func NewGoogleGeocoder(apiKey string, cache Cache) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("google geocoding api key is empty")
	}

	return &GoogleGeocoder{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		cache:   cache,
	}, nil
}

type googleResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		AddressComponents []struct {
			Types    []string `json:"types"`
			LongName string   `json:"long_name"`
		} `json:"address_components"`
	} `json:"results"`
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves a free-text address plus postal-code hint. The first
// candidate result wins; postal code, city and state are best-effort from
// the component tags and may stay empty.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address, postalCodeHint string) (_ domain.GeocodedAddress, err error) {
	defer obs.Time(ctx, "geocode.Geocode")(&err)

	query := normalize(address + " " + postalCodeHint)
	if query == "" {
		return domain.GeocodedAddress{}, errors.New("geocode: address must be non-empty")
	}

	if g.cache != nil {
		hit, ok, err := g.cache.Get(ctx, query)
		if err != nil {
			log.Printf("geocode cache read failed: %v", err)
		} else if ok {
			return hit, nil
		}
	}

	makeReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("address", query)
		q.Set("key", g.apiKey)
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := g.doWithRetry(ctx, makeReq)
	if err != nil {
		return domain.GeocodedAddress{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	var decoded googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.GeocodedAddress{}, fmt.Errorf("geocode %q: decode response: %w", query, err)
	}

	if len(decoded.Results) == 0 {
		return domain.GeocodedAddress{}, fmt.Errorf("geocode %q: no results", query)
	}

	first := decoded.Results[0]
	out := domain.GeocodedAddress{
		FormattedAddress: first.FormattedAddress,
	}

	if first.Geometry.Location.Lat != nil && first.Geometry.Location.Lng != nil {
		out.Location = &domain.GeoPoint{
			Latitude:  *first.Geometry.Location.Lat,
			Longitude: *first.Geometry.Location.Lng,
		}
	}

	for _, c := range first.AddressComponents {
		switch {
		case slices.Contains(c.Types, "locality"):
			out.City = c.LongName
		case slices.Contains(c.Types, "administrative_area_level_1"):
			out.State = c.LongName
		case slices.Contains(c.Types, "postal_code"):
			out.PostalCode = c.LongName
		}
	}

	if g.cache != nil {
		if err := g.cache.Put(ctx, query, out); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	return out, nil
}
