package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/platform/obs"
)

// Postgres-backed implementation of the OfficeDirectory port, for
// deployments where the directory lives in a shared database rather than a
// local sqlite file. Semantics match SqliteOfficeDirectory.
type SQLOfficeDirectory struct{ DB *sql.DB }

func NewSQLOfficeDirectory(db *sql.DB) *SQLOfficeDirectory {
	return &SQLOfficeDirectory{DB: db}
}

func (s *SQLOfficeDirectory) FindByPostalCode(ctx context.Context, code string) (_ []domain.PostOffice, err error) {
	defer obs.Time(ctx, "directory.FindByPostalCode")(&err)

	if s.DB == nil {
		return nil, errors.New("sql office directory: DB is nil")
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
	WHERE pincode = $1;
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
