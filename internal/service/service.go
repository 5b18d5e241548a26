package service

import (
	"context"

	"promo-dispenser/internal/model"
)

// PromoService defines operations for promo code dispensing.
type PromoService interface {
	// DispenseCode removes and returns the next promo code.
	DispenseCode(ctx context.Context) (string, error)

	// CodeChance returns the configured probability of a code drop.
	CodeChance(ctx context.Context) (float64, error)

	// Remaining reports how many codes are left in the queue.
	Remaining(ctx context.Context) (int, error)
}

// ButtonService defines operations for button-press counters.
type ButtonService interface {
	// Press records one press of button and returns the new total.
	Press(ctx context.Context, button model.Button) (int64, error)

	// Presses returns the current total for button.
	Presses(ctx context.Context, button model.Button) (int64, error)
}
