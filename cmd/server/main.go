package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"tour-planner-service/internal/adapters/cache"
	"tour-planner-service/internal/adapters/repositories"
	"tour-planner-service/internal/api"
	"tour-planner-service/internal/config"
	"tour-planner-service/internal/platform/db"
	"tour-planner-service/internal/ports"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, optional Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/networks.json")
	port := config.Get("PORT", "8080")

	solver, err := config.LoadSolver(os.Getenv("SOLVER_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}

	sqlDB, dialect, err := db.OpenFromEnv(os.Getenv("DATABASE_URL"), dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(sqlDB, dialect, seedPath); err != nil {
		log.Fatal(err)
	}

	pathCache, closeCache, err := openPathCache(sqlDB, dialect)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	router := api.NewRouter(api.Deps{
		Networks:    repositories.NewSQLRoadNetworkRepository(sqlDB, dialect),
		RequestSets: repositories.NewSQLRequestSetRepository(sqlDB, dialect),
		Tours:       repositories.NewSQLTourRepository(sqlDB, dialect),
		Cache:       pathCache,
		Solver:      solver,
		PlanRate:    rate.Limit(config.GetFloat("PLAN_RATE_PER_SEC", 2)),
		PlanBurst:   config.GetInt("PLAN_BURST", 4),
	})

	// Write timeout must outlast the largest budget a request may ask for.
	writeTimeout := solver.MaxTimeBudget() + 30*time.Second

	log.Printf("Server listening addr=:%s dialect=%s algorithm=%s budget=%dms max_budget=%dms",
		port, dialect, solver.Algorithm, solver.TimeBudgetMS, solver.MaxTimeBudgetMS)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openPathCache prefers Redis when REDIS_URL is set and falls back to the SQL table.
func openPathCache(sqlDB *sql.DB, dialect db.Dialect) (ports.PathCache, func(), error) {
	redisURL := strings.TrimSpace(os.Getenv("REDIS_URL"))
	if redisURL == "" {
		return cache.NewSQLPathCache(sqlDB, dialect), func() {}, nil
	}

	ttl := time.Duration(config.GetInt("PATH_CACHE_TTL_MIN", 24*60)) * time.Minute
	rc, err := cache.NewRedisPathCacheFromURL(redisURL, ttl)
	if err != nil {
		return nil, nil, fmt.Errorf("open path cache: %w", err)
	}
	log.Printf("Path cache backend=redis ttl=%s", ttl)
	return rc, func() { _ = rc.Close() }, nil
}

func initAndSeed(sqlDB *sql.DB, dialect db.Dialect, seedPath string) error {
	if err := repositories.InitSchema(sqlDB); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if seedPath == "" {
		return nil
	}
	if err := repositories.SeedFromJSON(sqlDB, dialect, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
