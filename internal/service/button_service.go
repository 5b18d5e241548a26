package service

import (
	"context"

	"promo-dispenser/internal/model"
	"promo-dispenser/internal/repository"

	"github.com/rs/zerolog"
)

// buttonService implements ButtonService.
type buttonService struct {
	counterRepo repository.CounterRepository
	logger      zerolog.Logger
}

// NewButtonService creates a new button service.
func NewButtonService(counterRepo repository.CounterRepository, logger zerolog.Logger) ButtonService {
	return &buttonService{
		counterRepo: counterRepo,
		logger:      logger.With().Str("service", "button").Logger(),
	}
}

// Press increments the counter behind button.
func (s *buttonService) Press(ctx context.Context, button model.Button) (int64, error) {
	name, err := button.CounterName()
	if err != nil {
		return 0, err
	}

	value, err := s.counterRepo.Increment(ctx, name)
	if err != nil {
		s.logger.Error().Err(err).Str("counter", name).Msg("failed to increment button count")
		return 0, err
	}

	s.logger.Debug().Str("counter", name).Int64("value", value).Msg("button pressed")

	return value, nil
}

// Presses reads the counter behind button.
func (s *buttonService) Presses(ctx context.Context, button model.Button) (int64, error) {
	name, err := button.CounterName()
	if err != nil {
		return 0, err
	}

	value, err := s.counterRepo.Read(ctx, name)
	if err != nil {
		s.logger.Error().Err(err).Str("counter", name).Msg("failed to read button count")
		return 0, err
	}

	return value, nil
}
