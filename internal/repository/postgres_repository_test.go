package repository

import (
	"context"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"promo-dispenser/internal/database"
	"promo-dispenser/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.EnsureSchema(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// truncateTables empties every table between subtests.
func truncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `TRUNCATE promo_codes, counters, params RESTART IDENTITY`)
	require.NoError(t, err)
}

func TestPostgresRepositories(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	promoRepo := NewPostgresPromoRepository(pool, logger)
	counterRepo := NewPostgresCounterRepository(pool, logger)

	t.Run("EnsureSchema is idempotent", func(t *testing.T) {
		assert.NoError(t, database.EnsureSchema(context.Background(), pool))
	})

	t.Run("PopFront returns codes in insertion order", func(t *testing.T) {
		truncateTables(t, pool)
		ctx := context.Background()

		require.NoError(t, promoRepo.Append(ctx, []string{"A1B2", "  ", "C3D4"}))

		code, err := promoRepo.PopFront(ctx)
		require.NoError(t, err)
		assert.Equal(t, "A1B2", code)

		code, err = promoRepo.PopFront(ctx)
		require.NoError(t, err)
		assert.Equal(t, "C3D4", code)

		_, err = promoRepo.PopFront(ctx)
		assert.ErrorIs(t, err, model.ErrQueueEmpty)

		count, err := promoRepo.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Concurrent pops dispense each code once", func(t *testing.T) {
		truncateTables(t, pool)
		const n = 40

		seed := generateCodes(n)
		require.NoError(t, promoRepo.Append(context.Background(), seed))

		var mu sync.Mutex
		popped := make([]string, 0, n)

		g, ctx := errgroup.WithContext(context.Background())
		for i := 0; i < n; i++ {
			g.Go(func() error {
				code, err := promoRepo.PopFront(ctx)
				if err != nil {
					return err
				}
				mu.Lock()
				popped = append(popped, code)
				mu.Unlock()
				return nil
			})
		}
		require.NoError(t, g.Wait())

		sort.Strings(popped)
		assert.Equal(t, seed, popped)

		_, err := promoRepo.PopFront(context.Background())
		assert.ErrorIs(t, err, model.ErrQueueEmpty)
	})

	t.Run("Counters and scalars", func(t *testing.T) {
		truncateTables(t, pool)
		ctx := context.Background()

		require.NoError(t, counterRepo.SetScalar(ctx, model.ParamCodeChance, 0.1))

		count, err := counterRepo.Read(ctx, "level50Presses")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		for i := 0; i < 3; i++ {
			_, err := counterRepo.Increment(ctx, "level50Presses")
			require.NoError(t, err)
		}

		count, err = counterRepo.Read(ctx, "level50Presses")
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		chance, err := counterRepo.ReadScalar(ctx, model.ParamCodeChance)
		require.NoError(t, err)
		assert.Equal(t, 0.1, chance)

		_, err = counterRepo.ReadScalar(ctx, "missing")
		assert.ErrorIs(t, err, model.ErrInvalidFormat)

		err = counterRepo.SetScalar(ctx, model.ParamCodeChance, math.Inf(1))
		assert.ErrorIs(t, err, model.ErrInvalidFormat)
	})

	t.Run("Concurrent increments are not lost", func(t *testing.T) {
		truncateTables(t, pool)
		const n = 60

		g, ctx := errgroup.WithContext(context.Background())
		for i := 0; i < n; i++ {
			g.Go(func() error {
				_, err := counterRepo.Increment(ctx, "level80Presses")
				return err
			})
		}
		require.NoError(t, g.Wait())

		count, err := counterRepo.Read(context.Background(), "level80Presses")
		require.NoError(t, err)
		assert.Equal(t, int64(n), count)
	})
}

func TestPostgresRepositories_ClosedPool(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	promoRepo := NewPostgresPromoRepository(pool, zerolog.Nop())
	counterRepo := NewPostgresCounterRepository(pool, zerolog.Nop())

	// Close the pool to simulate database errors
	pool.Close()

	_, err := promoRepo.PopFront(ctx)
	assert.ErrorIs(t, err, model.ErrIOFailure)

	_, err = counterRepo.Increment(ctx, "level50Presses")
	assert.ErrorIs(t, err, model.ErrIOFailure)

	_, err = counterRepo.ReadScalar(ctx, model.ParamCodeChance)
	assert.ErrorIs(t, err, model.ErrIOFailure)
}
