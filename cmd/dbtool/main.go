package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"tour-planner-service/internal/adapters/repositories"
	"tour-planner-service/internal/config"
	"tour-planner-service/internal/platform/db"
)

// dbtool creates the schema and loads the seed file into the configured
// database (Postgres when DATABASE_URL is set, SQLite otherwise).
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	sqlDB, dialect, err := db.OpenFromEnv(os.Getenv("DATABASE_URL"), config.Get("DB_PATH", "data/app.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/networks.json")
	if err := initAndSeed(sqlDB, dialect, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(sqlDB *sql.DB, dialect db.Dialect, seedPath string) error {
	log.Printf("Initializing database schema... dialect=%s", dialect)
	if err := repositories.InitSchema(sqlDB); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedFromJSON(sqlDB, dialect, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Println("Seeding complete.")

	return nil
}
