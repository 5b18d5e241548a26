package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"promo-dispenser/internal/config"
	"promo-dispenser/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.Backend = backend
	cfg.Storage.DataDir = t.TempDir()
	return cfg
}

func TestOpen_File(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	require.NoError(t, os.WriteFile(cfg.Storage.PromoCodesPath(), []byte("A1B2\nC3D4"), 0o644))
	require.NoError(t, os.WriteFile(cfg.Storage.ParamsPath(), []byte(`{"codeChance":0.1}`), 0o644))

	stores, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer stores.Close()

	assert.Equal(t, config.BackendFile, stores.Backend)

	code, err := stores.Promos.PopFront(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A1B2", code)

	chance, err := stores.Counters.ReadScalar(context.Background(), model.ParamCodeChance)
	require.NoError(t, err)
	assert.Equal(t, 0.1, chance)
}

func TestOpen_FileMissing(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)

	_, err := Open(context.Background(), cfg, zerolog.Nop())

	assert.ErrorIs(t, err, model.ErrIOFailure)
}

func TestOpen_Bolt(t *testing.T) {
	cfg := testConfig(t, config.BackendBolt)
	cfg.Storage.DataDir = filepath.Join(cfg.Storage.DataDir, "nested")

	stores, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, stores.Promos.Append(context.Background(), []string{"A1B2"}))
	n, err := stores.Counters.Increment(context.Background(), "level50Presses")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, stores.Close())
	assert.FileExists(t, cfg.Storage.BoltPath())
}

func TestOpen_UnsupportedBackend(t *testing.T) {
	cfg := testConfig(t, "memcached")

	_, err := Open(context.Background(), cfg, zerolog.Nop())

	assert.Error(t, err)
}

func TestEnsureFiles(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	cfg.Storage.DataDir = filepath.Join(cfg.Storage.DataDir, "fresh")

	require.NoError(t, EnsureFiles(cfg.Storage))

	codes, err := os.ReadFile(cfg.Storage.PromoCodesPath())
	require.NoError(t, err)
	assert.Empty(t, codes)

	params, err := os.ReadFile(cfg.Storage.ParamsPath())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(params))

	// Existing content survives a second call.
	require.NoError(t, os.WriteFile(cfg.Storage.PromoCodesPath(), []byte("A1B2"), 0o644))
	require.NoError(t, EnsureFiles(cfg.Storage))

	codes, err = os.ReadFile(cfg.Storage.PromoCodesPath())
	require.NoError(t, err)
	assert.Equal(t, "A1B2", string(codes))
}
