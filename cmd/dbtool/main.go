package main

import (
	"context"
	"database/sql"
	"fmt"
	"heavy-route-service/internal/adapters/cache"
	"heavy-route-service/internal/adapters/repositories"
	"heavy-route-service/internal/config"
	"heavy-route-service/internal/platform/db"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// dbtool prepares the Postgres geocode cache: creates the schema and
// preloads the known places from the seed file.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	sqlDB, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	seedPath := config.Get("PLACES_PATH", "data/seeds/places.json")
	if err := initAndSeed(ctx, sqlDB, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, sqlDB *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, sqlDB); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding geocode cache...")
	n, err := repositories.SeedFromJSON(ctx, cache.NewSQLGeocodeCache(sqlDB), seedPath)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Printf("Seeding complete. places=%d", n)

	return nil
}
