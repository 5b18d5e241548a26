package service

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPromoCodeRepository is a mock implementation of PromoCodeRepository.
type MockPromoCodeRepository struct {
	mock.Mock
}

func (m *MockPromoCodeRepository) PopFront(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPromoCodeRepository) Append(ctx context.Context, codes []string) error {
	args := m.Called(ctx, codes)
	return args.Error(0)
}

func (m *MockPromoCodeRepository) Len(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockCounterRepository is a mock implementation of CounterRepository.
type MockCounterRepository struct {
	mock.Mock
}

func (m *MockCounterRepository) Read(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCounterRepository) Increment(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCounterRepository) ReadScalar(ctx context.Context, key string) (float64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockCounterRepository) SetScalar(ctx context.Context, key string, value float64) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}
