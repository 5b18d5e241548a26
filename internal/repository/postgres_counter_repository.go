package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"promo-dispenser/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// postgresCounterRepository implements CounterRepository using PostgreSQL.
// Counters live in the counters table, scalars in params.
type postgresCounterRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresCounterRepository creates a new PostgreSQL-backed counter store.
func NewPostgresCounterRepository(pool *pgxpool.Pool, logger zerolog.Logger) CounterRepository {
	return &postgresCounterRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "postgres-counter").Logger(),
	}
}

// Read returns the counter under name, or zero.
func (r *postgresCounterRepository) Read(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.pool.QueryRow(ctx, `SELECT value FROM counters WHERE name = $1`, name).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		r.logger.Error().Err(err).Str("counter", name).Msg("failed to read counter")
		return 0, fmt.Errorf("%w: read counter %s: %w", model.ErrIOFailure, name, err)
	}
	return value, nil
}

// Increment adds one to the counter under name in a single upsert.
func (r *postgresCounterRepository) Increment(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO counters (name, value)
		VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`

	var value int64
	if err := r.pool.QueryRow(ctx, query, name).Scan(&value); err != nil {
		r.logger.Error().Err(err).Str("counter", name).Msg("failed to increment counter")
		return 0, fmt.Errorf("%w: increment counter %s: %w", model.ErrIOFailure, name, err)
	}
	return value, nil
}

// ReadScalar returns the parameter under key.
func (r *postgresCounterRepository) ReadScalar(ctx context.Context, key string) (float64, error) {
	var value float64
	err := r.pool.QueryRow(ctx, `SELECT value FROM params WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s is not set", model.ErrInvalidFormat, key)
		}
		r.logger.Error().Err(err).Str("key", key).Msg("failed to read parameter")
		return 0, fmt.Errorf("%w: read %s: %w", model.ErrIOFailure, key, err)
	}
	return value, nil
}

// SetScalar upserts the parameter under key.
func (r *postgresCounterRepository) SetScalar(ctx context.Context, key string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s must be finite", model.ErrInvalidFormat, key)
	}

	query := `
		INSERT INTO params (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := r.pool.Exec(ctx, query, key, value); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to set parameter")
		return fmt.Errorf("%w: set %s: %w", model.ErrIOFailure, key, err)
	}
	return nil
}
