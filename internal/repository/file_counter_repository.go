package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"promo-dispenser/internal/model"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// fileCounterRepository implements CounterRepository on a JSON document.
// Keys it does not own are preserved byte-for-byte (modulo indentation).
type fileCounterRepository struct {
	path   string
	lock   *fileLock
	logger zerolog.Logger
}

// NewFileCounterRepository creates a counter store backed by the JSON file at path.
func NewFileCounterRepository(path string, logger zerolog.Logger) (CounterRepository, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: params file %s: %w", model.ErrIOFailure, path, err)
	}

	return &fileCounterRepository{
		path:   path,
		lock:   newFileLock(path),
		logger: logger.With().Str("repository", "file-counter").Str("file", path).Logger(),
	}, nil
}

// Read returns the integer stored under name, or zero.
func (r *fileCounterRepository) Read(ctx context.Context, name string) (int64, error) {
	doc, err := r.readDocument()
	if err != nil {
		return 0, err
	}
	return counterValue(doc[name]), nil
}

// Increment adds one to the counter stored under name.
func (r *fileCounterRepository) Increment(ctx context.Context, name string) (value int64, err error) {
	if err := r.lock.Lock(ctx); err != nil {
		return 0, err
	}
	defer func() {
		if unlockErr := r.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()

	doc, err := r.readDocument()
	if err != nil {
		return 0, err
	}

	value = counterValue(doc[name]) + 1
	doc[name] = json.RawMessage(strconv.FormatInt(value, 10))

	if err := r.writeDocument(doc); err != nil {
		return 0, err
	}

	r.logger.Debug().Str("counter", name).Int64("value", value).Msg("counter incremented")

	return value, nil
}

// ReadScalar returns the number stored under key.
func (r *fileCounterRepository) ReadScalar(ctx context.Context, key string) (float64, error) {
	doc, err := r.readDocument()
	if err != nil {
		return 0, err
	}

	raw, ok := doc[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s is not set", model.ErrInvalidFormat, key)
	}

	var value *float64
	if err := json.Unmarshal(raw, &value); err != nil || value == nil {
		return 0, fmt.Errorf("%w: %s is not a number", model.ErrInvalidFormat, key)
	}

	return *value, nil
}

// SetScalar stores value under key.
func (r *fileCounterRepository) SetScalar(ctx context.Context, key string, value float64) (err error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", model.ErrInvalidFormat, key, err)
	}

	if err := r.lock.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if unlockErr := r.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()

	doc, err := r.readDocument()
	if err != nil {
		return err
	}

	doc[key] = raw

	return r.writeDocument(doc)
}

func (r *fileCounterRepository) readDocument() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read params file")
		return nil, fmt.Errorf("%w: read %s: %w", model.ErrIOFailure, r.path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		r.logger.Error().Err(err).Msg("params file is not valid JSON")
		return nil, fmt.Errorf("%w: parse %s: %w", model.ErrInvalidFormat, r.path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s does not hold a JSON object", model.ErrInvalidFormat, r.path)
	}

	return doc, nil
}

func (r *fileCounterRepository) writeDocument(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", model.ErrInvalidFormat, r.path, err)
	}

	if err := renameio.WriteFile(r.path, data, 0o644); err != nil {
		r.logger.Error().Err(err).Msg("failed to write params file")
		return fmt.Errorf("%w: write %s: %w", model.ErrIOFailure, r.path, err)
	}

	return nil
}

// counterValue decodes a stored counter. Only JSON numbers count, under the
// same rules as parseCounter; missing and non-number values are zero.
func counterValue(raw json.RawMessage) int64 {
	if len(bytes.TrimSpace(raw)) == 0 {
		return 0
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return 0
	}

	number, ok := value.(json.Number)
	if !ok {
		return 0
	}
	return parseCounter([]byte(number))
}
