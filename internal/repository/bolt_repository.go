package repository

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"promo-dispenser/internal/model"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"
)

var (
	promoCodesBucket = []byte("promo_codes")
	paramsBucket     = []byte("params")
)

// OpenBolt opens (or creates) the bolt database at path with both buckets present.
func OpenBolt(path string, logger zerolog.Logger) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open bolt database %s: %w", model.ErrIOFailure, path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{promoCodesBucket, paramsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create bolt buckets: %w", model.ErrIOFailure, err)
	}

	logger.Info().Str("file", path).Msg("bolt database opened")

	return db, nil
}

// boltPromoRepository keeps codes in a bucket keyed by big-endian sequence
// numbers, so cursor order is insertion order.
type boltPromoRepository struct {
	db     *bolt.DB
	logger zerolog.Logger
}

// NewBoltPromoRepository creates a promo code queue stored in db.
func NewBoltPromoRepository(db *bolt.DB, logger zerolog.Logger) PromoCodeRepository {
	return &boltPromoRepository{
		db:     db,
		logger: logger.With().Str("repository", "bolt-promo").Logger(),
	}
}

// PopFront deletes and returns the lowest-keyed code.
func (r *boltPromoRepository) PopFront(ctx context.Context) (string, error) {
	var code string

	err := r.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(promoCodesBucket).Cursor()
		k, v := c.First()
		if k == nil {
			return model.ErrQueueEmpty
		}
		code = string(v)
		return c.Delete()
	})
	if err != nil {
		if errors.Is(err, model.ErrQueueEmpty) {
			r.logger.Debug().Msg("promo code queue is empty")
			return "", err
		}
		r.logger.Error().Err(err).Msg("failed to pop promo code")
		return "", fmt.Errorf("%w: pop promo code: %w", model.ErrIOFailure, err)
	}

	return code, nil
}

// Append stores codes after the current tail.
func (r *boltPromoRepository) Append(ctx context.Context, codes []string) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(promoCodesBucket)
		for _, code := range codes {
			code = strings.TrimSpace(code)
			if code == "" {
				continue
			}
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			if err := b.Put(sequenceKey(seq), []byte(code)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to append promo codes")
		return fmt.Errorf("%w: append promo codes: %w", model.ErrIOFailure, err)
	}

	return nil
}

// Len returns the number of stored codes.
func (r *boltPromoRepository) Len(ctx context.Context) (int, error) {
	var n int
	err := r.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(promoCodesBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count promo codes: %w", model.ErrIOFailure, err)
	}
	return n, nil
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// boltCounterRepository keeps counters and scalars as decimal text in one bucket.
type boltCounterRepository struct {
	db     *bolt.DB
	logger zerolog.Logger
}

// NewBoltCounterRepository creates a counter store in db.
func NewBoltCounterRepository(db *bolt.DB, logger zerolog.Logger) CounterRepository {
	return &boltCounterRepository{
		db:     db,
		logger: logger.With().Str("repository", "bolt-counter").Logger(),
	}
}

// Read returns the counter under name, or zero.
func (r *boltCounterRepository) Read(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.View(func(tx *bolt.Tx) error {
		value = parseCounter(tx.Bucket(paramsBucket).Get([]byte(name)))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: read counter %s: %w", model.ErrIOFailure, name, err)
	}
	return value, nil
}

// Increment adds one to the counter under name inside a write transaction.
func (r *boltCounterRepository) Increment(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(paramsBucket)
		value = parseCounter(b.Get([]byte(name))) + 1
		return b.Put([]byte(name), []byte(strconv.FormatInt(value, 10)))
	})
	if err != nil {
		r.logger.Error().Err(err).Str("counter", name).Msg("failed to increment counter")
		return 0, fmt.Errorf("%w: increment counter %s: %w", model.ErrIOFailure, name, err)
	}
	return value, nil
}

// ReadScalar returns the number stored under key.
func (r *boltCounterRepository) ReadScalar(ctx context.Context, key string) (float64, error) {
	var raw []byte
	err := r.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(paramsBucket).Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: read %s: %w", model.ErrIOFailure, key, err)
	}

	if raw == nil {
		return 0, fmt.Errorf("%w: %s is not set", model.ErrInvalidFormat, key)
	}

	value, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", model.ErrInvalidFormat, key)
	}
	return value, nil
}

// SetScalar stores value under key.
func (r *boltCounterRepository) SetScalar(ctx context.Context, key string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s must be finite", model.ErrInvalidFormat, key)
	}

	err := r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(paramsBucket).Put([]byte(key), []byte(strconv.FormatFloat(value, 'g', -1, 64)))
	})
	if err != nil {
		return fmt.Errorf("%w: set %s: %w", model.ErrIOFailure, key, err)
	}
	return nil
}

// parseCounter decodes a stored count. Whole numbers written in float form
// (3.0, 1e2) count; fractional, negative, out-of-range and non-numeric text
// reads as zero.
func parseCounter(raw []byte) int64 {
	text := strings.TrimSpace(string(raw))

	if value, err := strconv.ParseInt(text, 10, 64); err == nil {
		return max(value, 0)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}
