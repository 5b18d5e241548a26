package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"promo-dispenser/internal/config"
	"promo-dispenser/internal/database"
	"promo-dispenser/internal/repository"

	"github.com/rs/zerolog"
)

// Stores bundles the repositories of one configured backend.
type Stores struct {
	Backend  string
	Promos   repository.PromoCodeRepository
	Counters repository.CounterRepository

	closers []func() error
}

// Open builds the repositories for cfg.Backend. Callers must Close the result.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Stores, error) {
	stores := &Stores{Backend: cfg.Storage.Backend}

	switch cfg.Storage.Backend {
	case config.BackendFile:
		promos, err := repository.NewFilePromoRepository(cfg.Storage.PromoCodesPath(), logger)
		if err != nil {
			return nil, err
		}
		counters, err := repository.NewFileCounterRepository(cfg.Storage.ParamsPath(), logger)
		if err != nil {
			return nil, err
		}
		stores.Promos, stores.Counters = promos, counters

	case config.BackendBolt:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.BoltPath()), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err := repository.OpenBolt(cfg.Storage.BoltPath(), logger)
		if err != nil {
			return nil, err
		}
		stores.Promos = repository.NewBoltPromoRepository(db, logger)
		stores.Counters = repository.NewBoltCounterRepository(db, logger)
		stores.closers = append(stores.closers, db.Close)

	case config.BackendPostgres:
		pool, err := database.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		stores.Promos = repository.NewPostgresPromoRepository(pool, logger)
		stores.Counters = repository.NewPostgresCounterRepository(pool, logger)
		stores.closers = append(stores.closers, func() error {
			pool.Close()
			return nil
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}

	logger.Info().Str("backend", stores.Backend).Msg("storage ready")

	return stores, nil
}

// Close releases backend resources.
func (s *Stores) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// EnsureFiles creates the data directory and empty file-backend stores when
// they do not exist yet. Existing files are left alone.
func EnsureFiles(cfg config.StorageConfig) error {
	files := []struct {
		path    string
		initial string
	}{
		{cfg.PromoCodesPath(), ""},
		{cfg.ParamsPath(), "{}"},
	}

	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", f.path, err)
		}

		_, writeErr := file.WriteString(f.initial)
		if err := errors.Join(writeErr, file.Close()); err != nil {
			return fmt.Errorf("failed to initialise %s: %w", f.path, err)
		}
	}

	return nil
}
