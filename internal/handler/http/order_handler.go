package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spasojewagner/tehnotrade-api/internal/auth"
	"github.com/spasojewagner/tehnotrade-api/internal/order"
)

type CheckoutItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int32  `json:"quantity" validate:"required,gte=1"`
}

type ShippingAddressRequest struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country"`
	Note       string `json:"note"`
}

// CreateOrderRequest carries product references and quantities only; prices
// are resolved server-side. Field order matters: validation is fail-fast and
// reports personal info before delivery info, as the checkout form does.
type CreateOrderRequest struct {
	FirstName       string                 `json:"firstName" validate:"required"`
	LastName        string                 `json:"lastName" validate:"required"`
	Email           string                 `json:"email" validate:"required,strict_email"`
	Phone           string                 `json:"phone" validate:"required,rs_phone"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required,oneof=cash card"`
	Items           []CheckoutItemRequest  `json:"items" validate:"required,min=1,dive"`
	PromoCode       string                 `json:"promoCode"`
}

// UpdateOrderRequest allows a status change only. Items and the shipping
// address are immutable after creation; requests carrying them are rejected
// outright instead of being silently ignored.
type UpdateOrderRequest struct {
	Status          *string         `json:"status"`
	Items           json.RawMessage `json:"items"`
	ShippingAddress json.RawMessage `json:"shippingAddress"`
}

type OrderResponse struct {
	Order *order.Order `json:"order"`
}

type OrderListResponse struct {
	Orders []order.Order `json:"orders"`
}

type PagedOrderListResponse struct {
	Orders     []order.Order    `json:"orders"`
	Pagination order.Pagination `json:"pagination"`
}

type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc, validate: newValidator()}
}

// RegisterRoutes wires the order endpoints. All routes require a session;
// the listing, mutation and stats routes additionally require admin.
func (h *OrderHandler) RegisterRoutes(router chi.Router, mw *auth.Middleware) {
	router.Post("/", h.handleCreateOrder)
	router.Get("/user/{userID}", h.handleGetOrdersByUser)

	router.Group(func(r chi.Router) {
		r.Use(mw.RequireAdmin)
		r.Get("/", h.handleListOrders)
		r.Get("/admin/all", h.handleListOrders)
		r.Get("/admin/stats", h.handleGetStats)
		r.Put("/{id}", h.handleUpdateOrder)
		r.Delete("/{id}", h.handleDeleteOrder)
	})

	router.Get("/{id}", h.handleGetOrder)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var requestPayload CreateOrderRequest

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

	items := make([]order.CheckoutItem, 0, len(requestPayload.Items))
	for _, item := range requestPayload.Items {
		productID, err := uuid.FromString(item.ProductID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid productId in order items")
			return
		}
		items = append(items, order.CheckoutItem{ProductID: productID, Quantity: item.Quantity})
	}

	country := requestPayload.ShippingAddress.Country
	if country == "" {
		country = "Serbia"
	}

	input := order.CheckoutInput{
		UserID: u.ID,
		Items:  items,
		Address: order.ShippingAddress{
			Street:     requestPayload.ShippingAddress.Street,
			City:       requestPayload.ShippingAddress.City,
			PostalCode: requestPayload.ShippingAddress.PostalCode,
			Country:    country,
			Phone:      requestPayload.Phone,
			Note:       requestPayload.ShippingAddress.Note,
		},
		PaymentMethod: order.PaymentMethod(requestPayload.PaymentMethod),
		PromoCode:     requestPayload.PromoCode,
	}

	createdOrder, err := h.svc.Checkout(r.Context(), input)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("Failed to create order via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to create order"))
		return
	}

	respondWithJSON(w, http.StatusCreated, OrderResponse{Order: createdOrder})
}

func (h *OrderHandler) handleGetOrdersByUser(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	userID, err := uuid.FromString(chi.URLParam(r, "userID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid user id parameter")
		return
	}

	// Customers may only list their own orders.
	if userID != u.ID && !u.IsAdmin() {
		respondWithError(w, http.StatusForbidden, "cannot access another user's orders")
		return
	}

	orders, err := h.svc.GetOrdersByUserID(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to list user orders via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to fetch orders"))
		return
	}

	respondWithJSON(w, http.StatusOK, OrderListResponse{Orders: orders})
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id parameter")
		return
	}

	ord, err := h.svc.GetOrderByID(r.Context(), orderID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to get order via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to fetch order"))
		return
	}

	if ord.UserID != u.ID && !u.IsAdmin() {
		respondWithError(w, http.StatusForbidden, "cannot access another user's order")
		return
	}

	respondWithJSON(w, http.StatusOK, OrderResponse{Order: ord})
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePageLimit(r)

	var statusFilter *order.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := order.OrderStatus(raw)
		statusFilter = &status
	}

	orders, pagination, err := h.svc.ListOrders(r.Context(), page, limit, statusFilter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to list orders"))
		return
	}

	respondWithJSON(w, http.StatusOK, PagedOrderListResponse{Orders: orders, Pagination: pagination})
}

func (h *OrderHandler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id parameter")
		return
	}

	var requestPayload UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if requestPayload.Items != nil {
		respondWithError(w, http.StatusBadRequest, "order items are immutable after creation")
		return
	}
	if requestPayload.ShippingAddress != nil {
		respondWithError(w, http.StatusBadRequest, "shipping address is immutable after creation")
		return
	}
	if requestPayload.Status == nil {
		respondWithError(w, http.StatusBadRequest, "field 'status' is required")
		return
	}

	newStatus := order.OrderStatus(*requestPayload.Status)
	if err := h.svc.UpdateOrderStatus(r.Context(), orderID, newStatus); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to update order status via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to update order status"))
		return
	}

	ord, err := h.svc.GetOrderByID(r.Context(), orderID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to reload order after status update")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to fetch order"))
		return
	}

	respondWithJSON(w, http.StatusOK, OrderResponse{Order: ord})
}

func (h *OrderHandler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id parameter")
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), orderID); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to delete order via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to delete order"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute order stats via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "failed to compute order stats"))
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

func parsePageLimit(r *http.Request) (int, int) {
	page := 1
	limit := 20

	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	return page, limit
}
