package handler

import (
	"net/http"
	"strconv"

	"promo-dispenser/internal/model"
	"promo-dispenser/internal/service"

	"github.com/rs/zerolog"
)

// ButtonHandler handles button counter requests.
type ButtonHandler struct {
	service service.ButtonService
	logger  zerolog.Logger
}

// NewButtonHandler creates a new button handler.
func NewButtonHandler(service service.ButtonService, logger zerolog.Logger) *ButtonHandler {
	return &ButtonHandler{
		service: service,
		logger:  logger.With().Str("handler", "button").Logger(),
	}
}

// Increment returns the POST /increment-<button>-button handler.
// The body is the count after the press.
func (h *ButtonHandler) Increment(button model.Button) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost, h.logger) {
			return
		}

		value, err := h.service.Press(r.Context(), button)
		if err != nil {
			writeDomainError(w, err, h.logger)
			return
		}

		writeText(w, http.StatusOK, strconv.FormatInt(value, 10))
	}
}

// Get returns the GET /get-<button>-button handler.
func (h *ButtonHandler) Get(button model.Button) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet, h.logger) {
			return
		}

		value, err := h.service.Presses(r.Context(), button)
		if err != nil {
			writeDomainError(w, err, h.logger)
			return
		}

		writeText(w, http.StatusOK, strconv.FormatInt(value, 10))
	}
}
