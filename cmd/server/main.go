package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"parcel-tracking-service/internal/adapters/geocode"
	"parcel-tracking-service/internal/adapters/llm"
	"parcel-tracking-service/internal/adapters/notify"
	"parcel-tracking-service/internal/adapters/ocr"
	"parcel-tracking-service/internal/adapters/repositories"
	"parcel-tracking-service/internal/api"
	"parcel-tracking-service/internal/config"
	"parcel-tracking-service/internal/platform/db"
	"parcel-tracking-service/internal/ports"
	"parcel-tracking-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite/Postgres, Google, Azure, Groq, Twilio)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/post_offices.json")
	uploadDir := config.Get("UPLOAD_DIR", "data/uploads")
	qrDir := config.Get("QR_DIR", "data/qr")
	port := config.Get("PORT", "8080")
	publicBaseURL := config.Get("PUBLIC_BASE_URL", "http://localhost:"+port)
	deliveredURL := config.Get("DELIVERED_URL", publicBaseURL+"/delivered")
	countryPrefix := config.Get("DEFAULT_COUNTRY_PREFIX", "+91")

	sqliteDB, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqliteDB.Close()

	// Parcel records always live in the embedded store; the office directory
	// can come from Postgres when DATABASE_URL is set.
	if err := repositories.InitSchema(sqliteDB); err != nil {
		log.Fatal(err)
	}

	directory, err := openDirectory(sqliteDB, seedPath)
	if err != nil {
		log.Fatal(err)
	}

	geocoder, err := geocode.NewGoogleGeocoder(requireEnv("GOOGLE_API_KEY"), openGeocodeCache())
	if err != nil {
		log.Fatal(err)
	}

	reader, err := ocr.NewAzureReader(requireEnv("AZURE_OCR_ENDPOINT"), requireEnv("AZURE_OCR_KEY"))
	if err != nil {
		log.Fatal(err)
	}

	extractor, err := llm.NewGroqClient(requireEnv("GROQ_API_KEY"))
	if err != nil {
		log.Fatal(err)
	}

	sms, err := notify.NewTwilioSMS(
		requireEnv("TWILIO_ACCOUNT_SID"),
		requireEnv("TWILIO_AUTH_TOKEN"),
		requireEnv("TWILIO_PHONE_NUMBER"),
	)
	if err != nil {
		log.Fatal(err)
	}

	parcels := repositories.NewSqliteParcelRepository(sqliteDB)

	pipeline := &services.Pipeline{
		Directory:            directory,
		Parcels:              parcels,
		Geocoder:             geocoder,
		OCR:                  reader,
		LLM:                  extractor,
		SMS:                  sms,
		QR:                   notify.NewPNGRenderer(qrDir),
		PublicBaseURL:        publicBaseURL,
		DefaultCountryPrefix: countryPrefix,
	}

	dispatch := func(job services.UploadJob) {
		go func() {
			if err := pipeline.ProcessUpload(context.Background(), job); err != nil {
				log.Printf("background processing failed: %v", err)
			}
		}()
	}

	router := api.NewRouter(parcels, dispatch, api.RouterConfig{
		UploadDir:     uploadDir,
		PublicBaseURL: publicBaseURL,
		DeliveredURL:  deliveredURL,
	})

	// Write timeout covers OCR-free requests only; uploads reply before the
	// background pipeline starts.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func requireEnv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		log.Fatalf("%s is required", key)
	}
	return v
}

func openDB(dbPath string) (*sql.DB, error) {
	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := sqliteDB.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return sqliteDB, nil
}

// openDirectory prefers a shared Postgres office directory and falls back to
// the embedded store, seeding it for local runs when a seed file exists.
func openDirectory(sqliteDB *sql.DB, seedPath string) (ports.OfficeDirectory, error) {
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("open directory: %w", err)
		}
		return repositories.NewSQLOfficeDirectory(pg), nil
	}

	if _, err := os.Stat(seedPath); err == nil {
		if err := repositories.SeedOfficesFromJSON(sqliteDB, seedPath); err != nil {
			return nil, fmt.Errorf("open directory: %w", err)
		}
	}

	return repositories.NewSqliteOfficeDirectory(sqliteDB), nil
}

// openGeocodeCache returns a Redis-backed cache when REDIS_ADDR is set,
// nil otherwise (the geocoder treats nil as no caching).
func openGeocodeCache() geocode.Cache {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	return geocode.NewRedisCache(client, 24*time.Hour)
}
