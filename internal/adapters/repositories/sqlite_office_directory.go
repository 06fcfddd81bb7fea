package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"parcel-tracking-service/internal/domain"
)

// SQLite-backed implementation of the OfficeDirectory port.
//
// Postal codes are opaque strings matched exactly; no normalization beyond
// what the backing table already guarantees. Rows whose stored coordinates
// cannot be parsed as finite floats are silently excluded.
type SqliteOfficeDirectory struct{ DB *sql.DB }

func NewSqliteOfficeDirectory(db *sql.DB) *SqliteOfficeDirectory {
	return &SqliteOfficeDirectory{DB: db}
}

func (s *SqliteOfficeDirectory) FindByPostalCode(ctx context.Context, code string) ([]domain.PostOffice, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite office directory: DB is nil")
	}

	query := `
	SELECT
		office_name,
		pincode,
		delivery,
		state_name,
		latitude,
		longitude,
		office_type
	FROM post_offices
	WHERE pincode = ?;
	`
	rows, err := s.DB.QueryContext(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("find offices: query post_offices table: %w", err)
	}
	defer rows.Close()

	offices := make([]domain.PostOffice, 0, 8)
	for rows.Next() {
		var name, pincode string
		var delivery, state, lat, lon, officeType sql.NullString
		if err := rows.Scan(&name, &pincode, &delivery, &state, &lat, &lon, &officeType); err != nil {
			return nil, fmt.Errorf("find offices: scan row: %w", err)
		}

		point, ok := parsePoint(lat, lon)
		if !ok {
			continue
		}

		offices = append(offices, domain.PostOffice{
			Name:         name,
			PostalCode:   pincode,
			DeliveryType: delivery.String,
			State:        state.String,
			Location:     point,
			OfficeType:   officeType.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find offices: row iteration: %w", err)
	}

	return offices, nil
}

// parsePoint converts stored coordinate text into a GeoPoint, rejecting
// NULLs, non-numeric values and out-of-range coordinates.
func parsePoint(lat, lon sql.NullString) (domain.GeoPoint, bool) {
	if !lat.Valid || !lon.Valid {
		return domain.GeoPoint{}, false
	}

	latF, err := strconv.ParseFloat(strings.TrimSpace(lat.String), 64)
	if err != nil || math.IsNaN(latF) || math.IsInf(latF, 0) {
		return domain.GeoPoint{}, false
	}

	lonF, err := strconv.ParseFloat(strings.TrimSpace(lon.String), 64)
	if err != nil || math.IsNaN(lonF) || math.IsInf(lonF, 0) {
		return domain.GeoPoint{}, false
	}

	p := domain.GeoPoint{Latitude: latF, Longitude: lonF}
	if !p.Valid() {
		return domain.GeoPoint{}, false
	}
	return p, true
}
