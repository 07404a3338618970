package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kurihiro0119/jira-effort-metrics/internal/api"
	"github.com/kurihiro0119/jira-effort-metrics/internal/config"
	"github.com/kurihiro0119/jira-effort-metrics/internal/logger"
	"github.com/kurihiro0119/jira-effort-metrics/internal/storage"
	"github.com/kurihiro0119/jira-effort-metrics/internal/storage/csvfile"
	"github.com/kurihiro0119/jira-effort-metrics/internal/storage/postgres"
	"github.com/kurihiro0119/jira-effort-metrics/internal/storage/sqlite"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize storage
	var store storage.Store
	switch cfg.StorageType {
	case "postgres":
		store, err = postgres.New(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL storage: %v", err)
		}
	case "sqlite":
		store, err = sqlite.New(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite storage: %v", err)
		}
	default:
		store = csvfile.New(cfg.DatasetPath)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store)

	// Setup routes
	router := api.SetupRoutes(handler)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	fmt.Printf("Starting API server on %s\n", addr)
	fmt.Printf("Storage type: %s\n", cfg.StorageType)

	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
