package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"promo-dispenser/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPromoHandler_GetCode(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		method         string
		mockCode       string
		mockError      error
		expectedStatus int
		expectedBody   string
		expectedCode   string
		expectCall     bool
	}{
		{
			name:           "Success",
			method:         http.MethodGet,
			mockCode:       "A1B2",
			expectedStatus: http.StatusOK,
			expectedBody:   "A1B2",
			expectCall:     true,
		},
		{
			name:           "Queue empty",
			method:         http.MethodGet,
			mockError:      model.ErrQueueEmpty,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeQueueEmpty,
			expectCall:     true,
		},
		{
			name:           "I/O failure",
			method:         http.MethodGet,
			mockError:      fmt.Errorf("%w: read data.txt: %w", model.ErrIOFailure, os.ErrPermission),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeIOFailure,
			expectCall:     true,
		},
		{
			name:           "Unclassified error",
			method:         http.MethodGet,
			mockError:      errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			expectCall:     true,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodPost,
			expectedStatus: http.StatusMethodNotAllowed,
			expectedCode:   model.ErrCodeMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPromoService)
			if tt.expectCall {
				mockService.On("DispenseCode", mock.Anything).Return(tt.mockCode, tt.mockError)
			}

			handler := NewPromoHandler(mockService, logger)

			req := httptest.NewRequest(tt.method, "/promo-codes", nil)
			w := httptest.NewRecorder()

			handler.GetCode(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				var resp model.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.expectedCode, resp.Code)
				assert.NotEmpty(t, resp.Error)
			} else {
				assert.Equal(t, tt.expectedBody, w.Body.String())
				assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
			}

			if tt.expectCall {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "DispenseCode", mock.Anything)
			}
		})
	}
}

func TestPromoHandler_GetCode_HidesCause(t *testing.T) {
	mockService := new(MockPromoService)
	mockService.On("DispenseCode", mock.Anything).
		Return("", fmt.Errorf("%w: open /srv/secret/data.txt: %w", model.ErrIOFailure, os.ErrNotExist))

	handler := NewPromoHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/promo-codes", nil)
	w := httptest.NewRecorder()

	handler.GetCode(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "/srv/secret")
}

func TestPromoHandler_GetChance(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		method         string
		mockValue      float64
		mockError      error
		expectedStatus int
		expectedBody   string
		expectCall     bool
	}{
		{
			name:           "Success",
			method:         http.MethodGet,
			mockValue:      0.1,
			expectedStatus: http.StatusOK,
			expectedBody:   "0.1",
			expectCall:     true,
		},
		{
			name:           "Whole number",
			method:         http.MethodGet,
			mockValue:      1,
			expectedStatus: http.StatusOK,
			expectedBody:   "1",
			expectCall:     true,
		},
		{
			name:           "Invalid format",
			method:         http.MethodGet,
			mockError:      model.ErrInvalidFormat,
			expectedStatus: http.StatusInternalServerError,
			expectCall:     true,
		},
		{
			name:           "Method not allowed",
			method:         http.MethodDelete,
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPromoService)
			if tt.expectCall {
				mockService.On("CodeChance", mock.Anything).Return(tt.mockValue, tt.mockError)
			}

			handler := NewPromoHandler(mockService, logger)

			req := httptest.NewRequest(tt.method, "/promo-chance", nil)
			w := httptest.NewRecorder()

			handler.GetChance(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, w.Body.String())
			}
			if tt.expectCall {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestWriteError_EchoesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set(RequestIDHeader, "req-123")

	WriteError(w, http.StatusBadRequest, model.ErrCodeMissingCredential, "access token is required", zerolog.Nop())

	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "req-123", resp.RequestID)
	assert.Equal(t, "access token is required", resp.Error)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      *model.DomainError
		expected int
	}{
		{model.ErrMissingCredential, http.StatusBadRequest},
		{model.ErrInvalidCredential, http.StatusUnauthorized},
		{model.ErrQueueEmpty, http.StatusNotFound},
		{model.ErrUnknownButton, http.StatusNotFound},
		{model.ErrInvalidFormat, http.StatusInternalServerError},
		{model.ErrIOFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}
