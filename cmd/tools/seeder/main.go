package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/noah-isme/backend-tax/internal/config"
	"github.com/noah-isme/backend-tax/internal/seed"
)

func main() {
	fixturePath := flag.String("fixture", "seed/taxonomy.yaml", "path to the taxonomy fixture")
	flag.Parse()

	dbURL, err := databaseURL()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fixture, err := seed.LoadFile(*fixturePath)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	if err := seed.ApplyDB(ctx, db, fixture); err != nil {
		log.Fatalf("Failed to seed taxonomy: %v", err)
	}

	sections, subsections, categories, subcategories := fixture.Counts()
	log.Printf("Seeded %d sections, %d subsections, %d categories, %d subcategories",
		sections, subsections, categories, subcategories)
	log.Println("Seeding completed successfully!")
}

// databaseURL resolves the DSN the same way the API does, so DB_* parts are
// honoured when DATABASE_URL is unset.
func databaseURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.DatabaseURL, nil
}
