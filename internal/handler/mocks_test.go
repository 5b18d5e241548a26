package handler

import (
	"context"

	"promo-dispenser/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockPromoService is a mock implementation of PromoService.
type MockPromoService struct {
	mock.Mock
}

func (m *MockPromoService) DispenseCode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPromoService) CodeChance(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockPromoService) Remaining(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockButtonService is a mock implementation of ButtonService.
type MockButtonService struct {
	mock.Mock
}

func (m *MockButtonService) Press(ctx context.Context, button model.Button) (int64, error) {
	args := m.Called(ctx, button)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockButtonService) Presses(ctx context.Context, button model.Button) (int64, error) {
	args := m.Called(ctx, button)
	return args.Get(0).(int64), args.Error(1)
}
