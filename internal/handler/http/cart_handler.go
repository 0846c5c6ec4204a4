package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spasojewagner/tehnotrade-api/internal/auth"
	"github.com/spasojewagner/tehnotrade-api/internal/cart"
)

type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int32 `json:"quantity" validate:"omitempty,gte=1"`
}

type UpdateQuantityRequest struct {
	Quantity int32 `json:"quantity" validate:"required,gte=1"`
}

type CartResponse struct {
	Cart []cart.CartItem `json:"cart"`
}

type CartHandler struct {
	svc      cart.Service
	validate *validator.Validate
}

func NewCartHandler(svc cart.Service) *CartHandler {
	return &CartHandler{svc: svc, validate: newValidator()}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.handleGetCart)
	router.Get("/summary", h.handleGetSummary)
	router.Post("/add", h.handleAddToCart)
	router.Put("/update/{productID}", h.handleUpdateQuantity)
	router.Delete("/remove/{productID}", h.handleRemoveFromCart)
	router.Delete("/clear", h.handleClearCart)
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	userCart, err := h.svc.GetCart(r.Context(), u.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch cart via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to fetch cart"))
		return
	}

	respondWithJSON(w, http.StatusOK, CartResponse{Cart: userCart.Items})
}

func (h *CartHandler) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	summary, err := h.svc.GetSummary(r.Context(), u.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch cart summary via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to fetch cart summary"))
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *CartHandler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var requestPayload AddToCartRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, firstValidationError(err))
		return
	}

	productID, err := uuid.FromString(requestPayload.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid productId")
		return
	}

	quantity := int32(1)
	if requestPayload.Quantity != nil {
		quantity = *requestPayload.Quantity
	}

	userCart, err := h.svc.AddItem(r.Context(), u.ID, productID, quantity)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("Failed to add cart item via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to add item to cart"))
		return
	}

	respondWithJSON(w, http.StatusOK, CartResponse{Cart: userCart.Items})
}

func (h *CartHandler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	productID, err := uuid.FromString(chi.URLParam(r, "productID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id parameter")
		return
	}

	var requestPayload UpdateQuantityRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, firstValidationError(err))
		return
	}

	userCart, err := h.svc.UpdateQuantity(r.Context(), u.ID, productID, requestPayload.Quantity)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("Failed to update cart quantity via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to update cart quantity"))
		return
	}

	respondWithJSON(w, http.StatusOK, CartResponse{Cart: userCart.Items})
}

func (h *CartHandler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	productID, err := uuid.FromString(chi.URLParam(r, "productID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id parameter")
		return
	}

	userCart, err := h.svc.RemoveItem(r.Context(), u.ID, productID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("Failed to remove cart item via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to remove item from cart"))
		return
	}

	respondWithJSON(w, http.StatusOK, CartResponse{Cart: userCart.Items})
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	userCart, err := h.svc.Clear(r.Context(), u.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("Failed to clear cart via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to clear cart"))
		return
	}

	respondWithJSON(w, http.StatusOK, CartResponse{Cart: userCart.Items})
}
