package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the database schema. Latitude and longitude are stored as TEXT:
// the upstream directory dataset contains malformed values, which are
// tolerated at read time rather than rejected at load time.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createOfficesQuery := `
	CREATE TABLE IF NOT EXISTS post_offices (
		office_name TEXT NOT NULL,
		pincode TEXT NOT NULL,
		delivery TEXT,
		state_name TEXT,
		latitude TEXT,
		longitude TEXT,
		office_type TEXT
	);
	`

	createOfficesIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_post_offices_pincode
	ON post_offices(pincode);
	`

	createParcelsQuery := `
	CREATE TABLE IF NOT EXISTS parcel_records (
		post_id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		is_delivered INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);
	`

	statements := []string{
		createOfficesQuery,
		createOfficesIndexQuery,
		createParcelsQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type OfficeSeed struct {
	OfficeName string `json:"office_name"`
	Pincode    string `json:"pincode"`
	Delivery   string `json:"delivery"`
	StateName  string `json:"state_name"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	OfficeType string `json:"office_type"`
}

// Populate the post-office directory from a JSON seed file. Coordinates are
// inserted verbatim, including malformed values; the directory adapter
// excludes those rows at query time.
func SeedOfficesFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed offices: read %q: %w", jsonPath, err)
	}

	var data []OfficeSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed offices: parse json: %w", err)
	}

	for i, item := range data {
		if strings.TrimSpace(item.OfficeName) == "" {
			return fmt.Errorf("seed offices: item at index %d: office_name cannot be empty", i+1)
		}
		if strings.TrimSpace(item.Pincode) == "" {
			return fmt.Errorf("seed offices: item at index %d: pincode cannot be empty", i+1)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed offices: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// The directory has no natural single-column key; reseeding replaces
	// the whole table.
	if _, err := tx.Exec(`DELETE FROM post_offices;`); err != nil {
		return fmt.Errorf("seed offices: clear table: %w", err)
	}

	query := `
	INSERT INTO post_offices (
		office_name,
		pincode,
		delivery,
		state_name,
		latitude,
		longitude,
		office_type
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed offices: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range data {
		if _, err := stmt.Exec(o.OfficeName, o.Pincode, o.Delivery, o.StateName, o.Latitude, o.Longitude, o.OfficeType); err != nil {
			return fmt.Errorf("seed offices: insert %q: %w", o.OfficeName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed offices: commit tx: %w", err)
	}

	return nil
}
