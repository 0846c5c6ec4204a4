package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spasojewagner/tehnotrade-api/internal/auth"
	"github.com/spasojewagner/tehnotrade-api/internal/cart"
	"github.com/spasojewagner/tehnotrade-api/internal/catalog"
	"github.com/spasojewagner/tehnotrade-api/internal/order"
	"github.com/spasojewagner/tehnotrade-api/internal/pricing"
	"github.com/spasojewagner/tehnotrade-api/internal/user"
)

// respondWithError sends a JSON error payload.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, cart.ErrCartItemNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, pricing.ErrUnknownPromo),
		errors.Is(err, user.ErrTermsNotAccepted):
		return http.StatusBadRequest
	case errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, user.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, auth.ErrSessionNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage maps known sentinels to the text the storefront shows; for
// anything else the fallback is used so internals never leak.
func clientMessage(err error, fallback string) string {
	knownErrors := []error{
		catalog.ErrProductNotFound,
		cart.ErrCartItemNotFound,
		cart.ErrInvalidQuantity,
		cart.ErrInsufficientStock,
		order.ErrOrderNotFound,
		order.ErrEmptyOrder,
		order.ErrInvalidStatus,
		order.ErrInvalidStatusTransition,
		order.ErrInsufficientStock,
		pricing.ErrUnknownPromo,
		user.ErrNotFound,
		user.ErrEmailExists,
		user.ErrInvalidCredentials,
		user.ErrTermsNotAccepted,
		auth.ErrSessionNotFound,
	}
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return fallback
}
