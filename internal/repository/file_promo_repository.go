package repository

import (
	"context"
	"fmt"
	"os"
	"strings"

	"promo-dispenser/internal/model"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// filePromoRepository implements PromoCodeRepository on a newline-delimited text file.
type filePromoRepository struct {
	path   string
	lock   *fileLock
	logger zerolog.Logger
}

// NewFilePromoRepository creates a promo code queue backed by the text file at path.
// The file must already exist; it is seeded outside the API.
func NewFilePromoRepository(path string, logger zerolog.Logger) (PromoCodeRepository, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: promo code file %s: %w", model.ErrIOFailure, path, err)
	}

	return &filePromoRepository{
		path:   path,
		lock:   newFileLock(path),
		logger: logger.With().Str("repository", "file-promo").Str("file", path).Logger(),
	}, nil
}

// PopFront removes and returns the first code in the file.
func (r *filePromoRepository) PopFront(ctx context.Context) (code string, err error) {
	if err := r.lock.Lock(ctx); err != nil {
		return "", err
	}
	defer func() {
		if unlockErr := r.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()

	codes, err := r.readCodes()
	if err != nil {
		return "", err
	}

	if len(codes) == 0 {
		r.logger.Debug().Msg("promo code queue is empty")
		return "", model.ErrQueueEmpty
	}

	head := codes[0]
	if err := r.writeCodes(codes[1:]); err != nil {
		// The rename never happened, so the file still holds head.
		return "", err
	}

	r.logger.Debug().Int("remaining", len(codes)-1).Msg("promo code popped")

	return head, nil
}

// Append adds codes to the end of the file.
func (r *filePromoRepository) Append(ctx context.Context, codes []string) (err error) {
	if err := r.lock.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if unlockErr := r.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()

	existing, err := r.readCodes()
	if err != nil {
		return err
	}

	added := 0
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			existing = append(existing, code)
			added++
		}
	}

	if added == 0 {
		return nil
	}

	if err := r.writeCodes(existing); err != nil {
		return err
	}

	r.logger.Info().Int("added", added).Int("total", len(existing)).Msg("promo codes appended")

	return nil
}

// Len returns the number of codes in the file.
func (r *filePromoRepository) Len(ctx context.Context) (int, error) {
	codes, err := r.readCodes()
	if err != nil {
		return 0, err
	}
	return len(codes), nil
}

func (r *filePromoRepository) readCodes() ([]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read promo code file")
		return nil, fmt.Errorf("%w: read %s: %w", model.ErrIOFailure, r.path, err)
	}
	return parseCodes(string(data)), nil
}

func (r *filePromoRepository) writeCodes(codes []string) error {
	if err := renameio.WriteFile(r.path, []byte(strings.Join(codes, "\n")), 0o644); err != nil {
		r.logger.Error().Err(err).Msg("failed to write promo code file")
		return fmt.Errorf("%w: write %s: %w", model.ErrIOFailure, r.path, err)
	}
	return nil
}

// parseCodes splits newline-delimited content into trimmed, non-blank codes.
func parseCodes(content string) []string {
	lines := strings.Split(content, "\n")
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		if code := strings.TrimSpace(line); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
