//go:build ignore

// Run with: go run scripts/check_db_connection.go
// Uses the same DB_* settings as the API server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"promo-dispenser/internal/config"
	"promo-dispenser/internal/database"
)

func main() {
	cfg, err := config.LoadOffline()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Open(ctx, cfg.Database, config.NewLogger(cfg.Logger, os.Stderr))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	var remaining int
	err = pool.QueryRow(ctx, "SELECT current_database(), (SELECT count(*) FROM promo_codes)").Scan(&dbName, &remaining)
	if err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully connected to database: %s (%d promo codes queued)\n", dbName, remaining)
}
