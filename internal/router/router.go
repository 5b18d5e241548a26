package router

import (
	"net/http"

	"promo-dispenser/internal/auth"
	"promo-dispenser/internal/handler"
	"promo-dispenser/internal/middleware"
	"promo-dispenser/internal/model"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	promoHandler *handler.PromoHandler,
	buttonHandler *handler.ButtonHandler,
	healthHandler *handler.HealthHandler,
	verifier auth.Verifier,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Token check runs per route, so unknown paths still answer 404.
	protect := middleware.AccessToken(verifier, logger)

	// Health check endpoint (no authentication required)
	mux.Handle("/health", healthHandler)

	mux.Handle("/promo-codes", protect(http.HandlerFunc(promoHandler.GetCode)))
	mux.Handle("/promo-chance", protect(http.HandlerFunc(promoHandler.GetChance)))

	for _, button := range model.Buttons {
		mux.Handle("/increment-"+string(button)+"-button", protect(buttonHandler.Increment(button)))
		mux.Handle("/get-"+string(button)+"-button", protect(buttonHandler.Get(button)))
	}

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)

	return h
}
