package repository

import (
	"context"
)

// PromoCodeRepository defines the operations on the durable promo code queue.
type PromoCodeRepository interface {
	// PopFront removes and returns the head of the queue.
	// It returns model.ErrQueueEmpty when no codes remain and leaves the
	// backing store untouched in that case.
	PopFront(ctx context.Context) (string, error)

	// Append adds codes to the tail of the queue. Blank codes are skipped.
	// Only the seeding tool grows the queue; the API never calls this.
	Append(ctx context.Context, codes []string) error

	// Len returns the number of codes remaining.
	Len(ctx context.Context) (int, error)
}

// CounterRepository defines the operations on the durable counter/parameter map.
type CounterRepository interface {
	// Read returns the counter stored under name.
	// Absent and non-integer values read as zero.
	Read(ctx context.Context, name string) (int64, error)

	// Increment adds one to the counter under name and returns the new value.
	Increment(ctx context.Context, name string) (int64, error)

	// ReadScalar returns a numeric parameter such as codeChance.
	// It returns model.ErrInvalidFormat when the key is absent or not a number.
	ReadScalar(ctx context.Context, key string) (float64, error)

	// SetScalar stores a numeric parameter. Used by the seeding tool only.
	SetScalar(ctx context.Context, key string, value float64) error
}
