package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spasojewagner/tehnotrade-api/internal/auth"
	"github.com/spasojewagner/tehnotrade-api/internal/catalog"
)

type ProductRequest struct {
	Name   string   `json:"name" validate:"required"`
	Brand  string   `json:"brand"`
	SKU    string   `json:"sku" validate:"required"`
	Price  int64    `json:"price" validate:"gte=0"`
	Stock  *int32   `json:"stock" validate:"omitempty,gte=0"`
	Images []string `json:"images"`
}

type ProductResponse struct {
	Product *catalog.Product `json:"product"`
}

type ProductListResponse struct {
	Products []catalog.Product `json:"products"`
	Total    int64             `json:"total"`
}

type ProductHandler struct {
	svc      catalog.Service
	validate *validator.Validate
}

func NewProductHandler(svc catalog.Service) *ProductHandler {
	return &ProductHandler{svc: svc, validate: newValidator()}
}

// RegisterRoutes wires catalog reads publicly and writes behind admin.
func (h *ProductHandler) RegisterRoutes(router chi.Router, mw *auth.Middleware) {
	router.Get("/", h.handleListProducts)
	router.Get("/{id}", h.handleGetProduct)

	router.Group(func(r chi.Router) {
		r.Use(mw.Authenticate, mw.RequireAdmin)
		r.Post("/", h.handleCreateProduct)
		r.Put("/{id}", h.handleUpdateProduct)
	})
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePageLimit(r)

	products, total, err := h.svc.ListProducts(r.Context(), page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to list products"))
		return
	}

	respondWithJSON(w, http.StatusOK, ProductListResponse{Products: products, Total: total})
}

func (h *ProductHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id parameter")
		return
	}

	product, err := h.svc.GetProductByID(r.Context(), productID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to fetch product"))
		return
	}

	respondWithJSON(w, http.StatusOK, ProductResponse{Product: product})
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload ProductRequest

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

	product := catalog.Product{
		Name:   requestPayload.Name,
		Brand:  requestPayload.Brand,
		SKU:    requestPayload.SKU,
		Price:  requestPayload.Price,
		Stock:  requestPayload.Stock,
		Images: requestPayload.Images,
	}

	created, err := h.svc.CreateProduct(r.Context(), &product)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create product via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to create product"))
		return
	}

	respondWithJSON(w, http.StatusCreated, ProductResponse{Product: created})
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id parameter")
		return
	}

	var requestPayload ProductRequest

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

	product := catalog.Product{
		ID:     productID,
		Name:   requestPayload.Name,
		Brand:  requestPayload.Brand,
		SKU:    requestPayload.SKU,
		Price:  requestPayload.Price,
		Stock:  requestPayload.Stock,
		Images: requestPayload.Images,
	}

	if err := h.svc.UpdateProduct(r.Context(), &product); err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("Failed to update product via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to update product"))
		return
	}

	respondWithJSON(w, http.StatusOK, ProductResponse{Product: &product})
}
