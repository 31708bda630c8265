package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/xcixor/eld-route-planner/internal/adapters/repositories"
	"github.com/xcixor/eld-route-planner/internal/adapters/route"
	"github.com/xcixor/eld-route-planner/internal/api"
	"github.com/xcixor/eld-route-planner/internal/config"
	"github.com/xcixor/eld-route-planner/internal/platform/db"
	"github.com/xcixor/eld-route-planner/internal/ports"
	"github.com/xcixor/eld-route-planner/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, ORS, Redis) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if strings.TrimSpace(cfg.ORSAPIKey) == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	database, err := openDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	// Initialize schema and seed reference data on startup for local runs.
	if err := initAndSeed(database, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Fatal(err)
	}

	repo := repositories.NewSQLTripRepository(database)
	planner := services.NewPlanner(repo, provider, services.NewCycleTracker(), services.PlanningConfig{
		AverageSpeedMPH:   cfg.AverageSpeedMPH,
		FuelIntervalMiles: cfg.FuelIntervalMiles,
		ProviderTimeout:   cfg.ProviderTimeout,
	})

	router := api.NewRouter(repo, planner)

	// Timeouts are tuned for cold-cache route planning (external API latency).
	log.Printf("Server listening addr=%s", cfg.Addr)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openDB picks Postgres when DATABASE_URL is set, otherwise a local
// SQLite file.
func openDB(cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		return db.Open(cfg.DatabaseURL)
	}

	database, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", cfg.SQLitePath, err)
	}

	if err := database.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", cfg.SQLitePath, err)
	}

	return database, nil
}

func initAndSeed(database *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(database); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if seedPath != "" {
		if err := repositories.SeedFromJSON(database, seedPath); err != nil {
			return fmt.Errorf("init and seed: %w", err)
		}
	}

	return nil
}

// buildProvider assembles the ORS route provider, wrapped in a Redis
// result cache when REDIS_ADDR is configured.
func buildProvider(cfg config.Config) (ports.RouteProvider, error) {
	provider, err := route.NewORSRouteProvider(cfg.ORSAPIKey, cfg.ORSBaseURL)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return provider, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return route.NewCachedRouteProvider(provider, rdb, cfg.RouteCacheTTL), nil
}
