package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every pool connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, InitSchema(db))
	return db
}

func insertOffice(t *testing.T, db *sql.DB, name, pincode, lat, lon string) {
	t.Helper()
	_, err := db.Exec(`
	INSERT INTO post_offices (office_name, pincode, delivery, state_name, latitude, longitude, office_type)
	VALUES (?, ?, 'Delivery', 'Karnataka', ?, ?, 'SO');
	`, name, pincode, lat, lon)
	require.NoError(t, err)
}

func TestFindByPostalCode(t *testing.T) {
	db := openTestDB(t)
	dir := NewSqliteOfficeDirectory(db)

	insertOffice(t, db, "Bangalore GPO", "560001", "12.9833", "77.5833")
	insertOffice(t, db, "Shivajinagar SO", "560001", "12.9860", "77.6047")
	insertOffice(t, db, "Connaught Place SO", "110001", "28.6315", "77.2167")

	offices, err := dir.FindByPostalCode(context.Background(), "560001")
	require.NoError(t, err)
	require.Len(t, offices, 2)

	assert.Equal(t, "Bangalore GPO", offices[0].Name)
	assert.Equal(t, "560001", offices[0].PostalCode)
	assert.InDelta(t, 12.9833, offices[0].Location.Latitude, 1e-9)
	assert.Equal(t, "SO", offices[0].OfficeType)
}

func TestFindByPostalCodeEmptyResult(t *testing.T) {
	db := openTestDB(t)
	dir := NewSqliteOfficeDirectory(db)

	offices, err := dir.FindByPostalCode(context.Background(), "000000")
	require.NoError(t, err)
	assert.Empty(t, offices)
}

func TestFindByPostalCodeExcludesMalformedCoordinates(t *testing.T) {
	db := openTestDB(t)
	dir := NewSqliteOfficeDirectory(db)

	insertOffice(t, db, "Good", "560001", "12.9833", "77.5833")
	insertOffice(t, db, "Junk longitude", "560001", "12.9860", "NA")
	insertOffice(t, db, "Junk latitude", "560001", "", "77.6047")
	insertOffice(t, db, "Out of range", "560001", "112.9860", "77.6047")

	// NULL coordinates too.
	_, err := db.Exec(`
	INSERT INTO post_offices (office_name, pincode, delivery, state_name, latitude, longitude, office_type)
	VALUES ('Null coords', '560001', 'Delivery', 'Karnataka', NULL, NULL, 'SO');
	`)
	require.NoError(t, err)

	offices, err := dir.FindByPostalCode(context.Background(), "560001")
	require.NoError(t, err)

	require.Len(t, offices, 1)
	assert.Equal(t, "Good", offices[0].Name)
}

func TestFindByPostalCodeExactStringMatch(t *testing.T) {
	db := openTestDB(t)
	dir := NewSqliteOfficeDirectory(db)

	insertOffice(t, db, "Leading zero", "01001", "12.98", "77.58")

	offices, err := dir.FindByPostalCode(context.Background(), "1001")
	require.NoError(t, err)
	assert.Empty(t, offices)

	offices, err = dir.FindByPostalCode(context.Background(), "01001")
	require.NoError(t, err)
	assert.Len(t, offices, 1)
}
