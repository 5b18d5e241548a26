package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promo-dispenser/internal/auth"
	"promo-dispenser/internal/config"
	"promo-dispenser/internal/handler"
	"promo-dispenser/internal/router"
	"promo-dispenser/internal/service"
	"promo-dispenser/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger, os.Stdout)
	logger.Info().Msg("starting promo-dispenser API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	verifier, err := newVerifier(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize access token verifier: %w", err)
	}

	// Initialize storage backend
	stores, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close storage")
		}
	}()

	// Initialize services
	promoService := service.NewPromoService(stores.Promos, stores.Counters, logger)
	buttonService := service.NewButtonService(stores.Counters, logger)

	// Initialize HTTP handlers
	promoHandler := handler.NewPromoHandler(promoService, logger)
	buttonHandler := handler.NewButtonHandler(buttonService, logger)
	healthHandler := handler.NewHealthHandler(promoService, stores.Backend, logger)

	// Initialize router
	mux := router.New(promoHandler, buttonHandler, healthHandler, verifier, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newVerifier prefers a configured hash so the plaintext token never has to
// be present in the environment.
func newVerifier(cfg config.AuthConfig) (auth.Verifier, error) {
	if cfg.AccessTokenHash != "" {
		return auth.NewBcryptVerifierFromHash(cfg.AccessTokenHash)
	}
	return auth.NewBcryptVerifier(cfg.AccessToken, cfg.BcryptCost)
}
