package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"layover-route-service/internal/adapters/cache"
	"layover-route-service/internal/platform/db"
)

// dbtool prepares and maintains the Postgres travel cache: it creates the
// schema, and when PURGE_OLDER_THAN is set (a duration such as "168h") it
// also drops rows fetched longer ago than that.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	log.Println("Initializing travel cache schema...")
	if err := cache.InitPostgresSchema(pool); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if v := os.Getenv("PURGE_OLDER_THAN"); v != "" {
		maxAge, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid PURGE_OLDER_THAN %q: %v", v, err)
		}
		purged, err := cache.NewPostgresTravelTimeCache(pool).PurgeOlderThan(ctx, maxAge)
		if err != nil {
			log.Fatalf("purge failed: %v", err)
		}
		log.Printf("Purged %d stale travel cache rows.", purged)
	}
}
