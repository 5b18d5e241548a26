package seed

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createSeedFile writes codes to a file, gzipped when the name ends in .gz.
func createSeedFile(t *testing.T, filename string, codes []string) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), filename)
	content := strings.Join(codes, "\n") + "\n"

	if !strings.HasSuffix(filename, ".gz") {
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
		return filePath
	}

	file, err := os.Create(filePath)
	require.NoError(t, err)
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	_, err = gzipWriter.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gzipWriter.Close())

	return filePath
}

func TestFileLoader_Load(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		codes    []string
		expected []string
	}{
		{
			name:     "Plain text keeps order",
			filename: "codes.txt",
			codes:    []string{"ZZZ", "AAA", "MMM"},
			expected: []string{"ZZZ", "AAA", "MMM"},
		},
		{
			name:     "Gzipped",
			filename: "codes.txt.gz",
			codes:    []string{"CODE1", "CODE2"},
			expected: []string{"CODE1", "CODE2"},
		},
		{
			name:     "Blank lines and whitespace",
			filename: "codes.txt",
			codes:    []string{"", "  CODE1  ", "   ", "CODE2\r"},
			expected: []string{"CODE1", "CODE2"},
		},
		{
			name:     "Empty file",
			filename: "empty.txt",
			codes:    []string{},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewFileLoader(zerolog.Nop())
			filePath := createSeedFile(t, tt.filename, tt.codes)

			codes, err := loader.Load(context.Background(), filePath)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, codes)
		})
	}
}

func TestFileLoader_Load_FileNotFound(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	codes, err := loader.Load(context.Background(), "/nonexistent/codes.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open seed file")
	assert.Nil(t, codes)
}

func TestFileLoader_Load_InvalidGzip(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	filePath := filepath.Join(t.TempDir(), "broken.gz")
	require.NoError(t, os.WriteFile(filePath, []byte("not gzip data"), 0o644))

	codes, err := loader.Load(context.Background(), filePath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
	assert.Nil(t, codes)
}

func TestFileLoader_Load_ContextCancelled(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	filePath := createSeedFile(t, "codes.txt", []string{"CODE1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	codes, err := loader.Load(ctx, filePath)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, codes)
}
