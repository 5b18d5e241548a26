package seed

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Loader reads an ordered list of promo codes from a source.
type Loader interface {
	// Load returns the non-blank, trimmed codes in file order.
	Load(ctx context.Context, path string) ([]string, error)
}

// fileLoader implements Loader for local plain-text or gzipped files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new local file loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "seed-loader").Logger(),
	}
}

// Load reads one code per line. Files ending in .gz are decompressed.
func (l *fileLoader) Load(ctx context.Context, path string) ([]string, error) {
	l.logger.Info().Str("file", path).Msg("loading seed file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open seed file")
		return nil, fmt.Errorf("failed to open seed file %s: %w", path, err)
	}
	defer file.Close()

	codes, err := readCodes(ctx, file, strings.HasSuffix(path, ".gz"))
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("error reading seed file")
		return nil, fmt.Errorf("error reading seed file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("codes_loaded", len(codes)).
		Msg("seed file loaded successfully")

	return codes, nil
}

// readCodes scans newline-delimited codes from r, skipping blank lines.
func readCodes(ctx context.Context, r io.Reader, gzipped bool) ([]string, error) {
	if gzipped {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var codes []string
	lineCount := 0
	for scanner.Scan() {
		// Check context cancellation periodically
		if lineCount%100_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		lineCount++

		if code := strings.TrimSpace(scanner.Text()); code != "" {
			codes = append(codes, code)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return codes, nil
}
