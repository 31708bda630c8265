package main

import (
	"database/sql"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/xcixor/eld-route-planner/internal/adapters/repositories"
	"github.com/xcixor/eld-route-planner/internal/platform/db"
)

// dbtool initializes the schema and seeds reference data against either
// Postgres (DATABASE_URL) or a local SQLite file (SQLITE_PATH).
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	database, err := open()
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	seedPath := os.Getenv("SEED_PATH")
	if seedPath == "" {
		seedPath = "data/seeds/reference.json"
	}
	initAndSeed(database, seedPath)
}

func open() (*sql.DB, error) {
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		return db.Open(databaseURL)
	}

	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "eld.db"
	}
	return sql.Open("sqlite", path)
}

func initAndSeed(database *sql.DB, seedPath string) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(database); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedFromJSON(database, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
