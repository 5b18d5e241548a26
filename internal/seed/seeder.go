package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"promo-dispenser/internal/model"
	"promo-dispenser/internal/repository"

	"github.com/rs/zerolog"
)

// Seeder fills a storage backend before the API starts serving it.
type Seeder struct {
	loader   Loader
	promos   repository.PromoCodeRepository
	counters repository.CounterRepository
	logger   zerolog.Logger
}

// NewSeeder creates a seeder writing into the given repositories.
func NewSeeder(loader Loader, promos repository.PromoCodeRepository, counters repository.CounterRepository, logger zerolog.Logger) *Seeder {
	return &Seeder{
		loader:   loader,
		promos:   promos,
		counters: counters,
		logger:   logger.With().Str("component", "seeder").Logger(),
	}
}

// SeedCodes appends the codes of every path, in order, to the promo queue.
// A code repeated across or within the files is queued once.
func (s *Seeder) SeedCodes(ctx context.Context, paths ...string) (int, error) {
	seen := make(map[string]struct{})
	var codes []string

	for _, path := range paths {
		loaded, err := s.loader.Load(ctx, path)
		if err != nil {
			return 0, err
		}

		for _, code := range loaded {
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			codes = append(codes, code)
		}
	}

	if err := s.promos.Append(ctx, codes); err != nil {
		return 0, fmt.Errorf("failed to append promo codes: %w", err)
	}

	s.logger.Info().
		Int("files", len(paths)).
		Int("codes_added", len(codes)).
		Msg("promo codes seeded")

	return len(codes), nil
}

// ImportParams copies numeric scalars from a JSON params document.
// Counter keys are skipped; counters always start from the backend's own state.
func (s *Seeder) ImportParams(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read params file %s: %w", path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("%w: parse %s: %w", model.ErrInvalidFormat, path, err)
	}

	counterKeys := make(map[string]struct{}, len(model.Buttons))
	for _, button := range model.Buttons {
		name, _ := button.CounterName()
		counterKeys[name] = struct{}{}
	}

	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	imported := 0
	for _, key := range keys {
		if _, isCounter := counterKeys[key]; isCounter {
			s.logger.Debug().Str("key", key).Msg("skipping counter key")
			continue
		}

		var value *float64
		if err := json.Unmarshal(doc[key], &value); err != nil || value == nil {
			s.logger.Warn().Str("key", key).Msg("skipping non-numeric parameter")
			continue
		}

		if err := s.counters.SetScalar(ctx, key, *value); err != nil {
			return imported, fmt.Errorf("failed to set %s: %w", key, err)
		}
		imported++
	}

	s.logger.Info().Str("file", path).Int("imported", imported).Msg("parameters imported")

	return imported, nil
}
