package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"promo-dispenser/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// postgresPromoRepository implements PromoCodeRepository using PostgreSQL.
type postgresPromoRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresPromoRepository creates a new PostgreSQL-backed promo code queue.
func NewPostgresPromoRepository(pool *pgxpool.Pool, logger zerolog.Logger) PromoCodeRepository {
	return &postgresPromoRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "postgres-promo").Logger(),
	}
}

// PopFront deletes and returns the oldest code.
// SKIP LOCKED lets concurrent callers claim different rows instead of all
// waiting on, and then missing, the same head row.
func (r *postgresPromoRepository) PopFront(ctx context.Context) (string, error) {
	query := `
		DELETE FROM promo_codes
		WHERE id = (
			SELECT id FROM promo_codes
			ORDER BY id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING code
	`

	var code string
	err := r.pool.QueryRow(ctx, query).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Msg("promo code queue is empty")
			return "", model.ErrQueueEmpty
		}
		r.logger.Error().Err(err).Msg("failed to pop promo code")
		return "", fmt.Errorf("%w: pop promo code: %w", model.ErrIOFailure, err)
	}

	return code, nil
}

// Append inserts codes in order after the current tail.
func (r *postgresPromoRepository) Append(ctx context.Context, codes []string) error {
	trimmed := make([]string, 0, len(codes))
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			trimmed = append(trimmed, code)
		}
	}

	if len(trimmed) == 0 {
		return nil
	}

	query := `
		INSERT INTO promo_codes (code)
		SELECT code FROM unnest($1::text[]) WITH ORDINALITY AS t(code, ord)
		ORDER BY ord
	`

	if _, err := r.pool.Exec(ctx, query, trimmed); err != nil {
		r.logger.Error().Err(err).Int("count", len(trimmed)).Msg("failed to append promo codes")
		return fmt.Errorf("%w: append promo codes: %w", model.ErrIOFailure, err)
	}

	r.logger.Info().Int("added", len(trimmed)).Msg("promo codes appended")

	return nil
}

// Len returns the number of queued codes.
func (r *postgresPromoRepository) Len(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM promo_codes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count promo codes: %w", model.ErrIOFailure, err)
	}
	return n, nil
}
