package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"parcel-tracking-service/internal/adapters/repositories"
	"parcel-tracking-service/internal/config"
	"parcel-tracking-service/internal/platform/db"
)

// dbtool initializes the post-office directory schema and loads a seed file.
// It targets Postgres when DATABASE_URL is set and the embedded store otherwise.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	store, err := open()
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/post_offices.json")
	if err := initAndSeed(store, seedPath); err != nil {
		log.Fatal(err)
	}
}

func open() (*sql.DB, error) {
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		return db.Open(databaseURL)
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	store, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", dbPath, err)
	}
	if err := store.Ping(); err != nil {
		return nil, fmt.Errorf("verify sqlite connection to %q: %w", dbPath, err)
	}

	return store, nil
}

func initAndSeed(store *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(store); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding post-office directory...")
	if err := repositories.SeedOfficesFromJSON(store, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Println("Seeding complete.")

	return nil
}
