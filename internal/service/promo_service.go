package service

import (
	"context"
	"errors"

	"promo-dispenser/internal/model"
	"promo-dispenser/internal/repository"

	"github.com/rs/zerolog"
)

// promoService implements PromoService.
type promoService struct {
	promoRepo   repository.PromoCodeRepository
	counterRepo repository.CounterRepository
	logger      zerolog.Logger
}

// NewPromoService creates a new promo service.
func NewPromoService(
	promoRepo repository.PromoCodeRepository,
	counterRepo repository.CounterRepository,
	logger zerolog.Logger,
) PromoService {
	return &promoService{
		promoRepo:   promoRepo,
		counterRepo: counterRepo,
		logger:      logger.With().Str("service", "promo").Logger(),
	}
}

// DispenseCode pops the head of the queue. Each code is returned at most once.
func (s *promoService) DispenseCode(ctx context.Context) (string, error) {
	code, err := s.promoRepo.PopFront(ctx)
	if err != nil {
		if errors.Is(err, model.ErrQueueEmpty) {
			s.logger.Warn().Msg("promo code requested but queue is empty")
		} else {
			s.logger.Error().Err(err).Msg("failed to dispense promo code")
		}
		return "", err
	}

	// The code itself is a bearer value; log only that one went out.
	s.logger.Info().Int("code_length", len(code)).Msg("promo code dispensed")

	return code, nil
}

// CodeChance reads the codeChance parameter.
func (s *promoService) CodeChance(ctx context.Context) (float64, error) {
	chance, err := s.counterRepo.ReadScalar(ctx, model.ParamCodeChance)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read promo chance")
		return 0, err
	}
	return chance, nil
}

// Remaining returns the queue length.
func (s *promoService) Remaining(ctx context.Context) (int, error) {
	n, err := s.promoRepo.Len(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count remaining promo codes")
		return 0, err
	}
	return n, nil
}
