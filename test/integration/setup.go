package integration

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"promo-dispenser/internal/auth"
	"promo-dispenser/internal/config"
	"promo-dispenser/internal/handler"
	"promo-dispenser/internal/router"
	"promo-dispenser/internal/seed"
	"promo-dispenser/internal/service"
	"promo-dispenser/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// AccessToken is the shared secret every test server accepts.
const AccessToken = "integration-token"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Config    config.DatabaseConfig
}

// SetupTestDB creates a PostgreSQL test container.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}

	return &TestDB{
		Container: postgresContainer,
		Config: config.DatabaseConfig{
			Host:            poolConfig.ConnConfig.Host,
			Port:            int(poolConfig.ConnConfig.Port),
			User:            "testuser",
			Password:        "testpass",
			Database:        "testdb",
			MaxConnections:  10,
			MinConnections:  2,
			MaxConnLifetime: 300,
		},
	}
}

// NewConfig returns a configuration for backend rooted in a temp directory.
func NewConfig(t *testing.T, backend string, db *TestDB) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Auth.AccessToken = AccessToken
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Storage.Backend = backend
	cfg.Storage.DataDir = filepath.Join(t.TempDir(), "data")
	if db != nil {
		cfg.Database = db.Config
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	return cfg
}

// Server is a fully wired API backed by real storage.
type Server struct {
	Handler http.Handler
	Stores  *storage.Stores
	Seeder  *seed.Seeder
}

// SetupServer opens the configured backend and wires the same graph as cmd/api.
func SetupServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	logger := zerolog.Nop()
	ctx := context.Background()

	if cfg.Storage.Backend == config.BackendFile {
		if err := storage.EnsureFiles(cfg.Storage); err != nil {
			t.Fatalf("failed to create data files: %v", err)
		}
	}

	stores, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() {
		if err := stores.Close(); err != nil {
			t.Logf("failed to close storage: %v", err)
		}
	})

	verifier, err := auth.NewBcryptVerifier(cfg.Auth.AccessToken, cfg.Auth.BcryptCost)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}

	promoService := service.NewPromoService(stores.Promos, stores.Counters, logger)
	buttonService := service.NewButtonService(stores.Counters, logger)

	return &Server{
		Handler: router.New(
			handler.NewPromoHandler(promoService, logger),
			handler.NewButtonHandler(buttonService, logger),
			handler.NewHealthHandler(promoService, stores.Backend, logger),
			verifier,
			logger,
		),
		Stores: stores,
		Seeder: seed.NewSeeder(seed.NewFileLoader(logger), stores.Promos, stores.Counters, logger),
	}
}
