package handler

import (
	"net/http"
	"strconv"

	"promo-dispenser/internal/service"

	"github.com/rs/zerolog"
)

// PromoHandler handles promo code requests.
type PromoHandler struct {
	service service.PromoService
	logger  zerolog.Logger
}

// NewPromoHandler creates a new promo handler.
func NewPromoHandler(service service.PromoService, logger zerolog.Logger) *PromoHandler {
	return &PromoHandler{
		service: service,
		logger:  logger.With().Str("handler", "promo").Logger(),
	}
}

// GetCode handles GET /promo-codes. The body is the dispensed code.
func (h *PromoHandler) GetCode(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, h.logger) {
		return
	}

	code, err := h.service.DispenseCode(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeText(w, http.StatusOK, code)
}

// GetChance handles GET /promo-chance. The body is the codeChance value.
func (h *PromoHandler) GetChance(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, h.logger) {
		return
	}

	chance, err := h.service.CodeChance(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeText(w, http.StatusOK, strconv.FormatFloat(chance, 'g', -1, 64))
}
