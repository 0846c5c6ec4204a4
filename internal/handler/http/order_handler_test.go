package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spasojewagner/tehnotrade-api/internal/auth"
	"github.com/spasojewagner/tehnotrade-api/internal/order"
	"github.com/spasojewagner/tehnotrade-api/internal/user"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) Checkout(ctx context.Context, input order.CheckoutInput) (*order.Order, error) {
	args := m.Called(ctx, input)
	if ord := args.Get(0); ord != nil {
		return ord.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if ord := args.Get(0); ord != nil {
		return ord.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if orders := args.Get(0); orders != nil {
		return orders.([]order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) ListOrders(ctx context.Context, page, limit int, status *order.OrderStatus) ([]order.Order, order.Pagination, error) {
	args := m.Called(ctx, page, limit, status)
	return args.Get(0).([]order.Order), args.Get(1).(order.Pagination), args.Error(2)
}

func (m *mockOrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus order.OrderStatus) error {
	args := m.Called(ctx, orderID, newStatus)
	return args.Error(0)
}

func (m *mockOrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *mockOrderService) GetStats(ctx context.Context) (order.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(order.Stats), args.Error(1)
}

func orderTestRouter(svc order.Service) chi.Router {
	router := chi.NewRouter()
	// RequireAdmin only reads the user already placed on the context, so the
	// middleware needs no live session or user service here.
	NewOrderHandler(svc).RegisterRoutes(router, auth.NewMiddleware(nil, nil))
	return router
}

func testAdmin() *user.User {
	return &user.User{ID: uuid.Must(uuid.NewV4()), Email: "admin@example.rs", Role: user.RoleAdmin}
}

func checkoutBody(productID uuid.UUID, overrides map[string]any) string {
	payload := map[string]any{
		"firstName":       "Marko",
		"lastName":        "Petrovic",
		"email":           "marko@example.rs",
		"phone":           "+381641234567",
		"shippingAddress": map[string]any{"street": "Knez Mihailova 1", "city": "Beograd", "postalCode": "11000"},
		"paymentMethod":   "cash",
		"items":           []map[string]any{{"productId": productID.String(), "quantity": 2}},
	}
	for k, v := range overrides {
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return string(raw)
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	customer := testCustomer()
	productID := uuid.Must(uuid.NewV4())

	svc := new(mockOrderService)
	svc.On("Checkout", mock.Anything, mock.MatchedBy(func(input order.CheckoutInput) bool {
		return input.UserID == customer.ID &&
			len(input.Items) == 1 &&
			input.Items[0].ProductID == productID &&
			input.Items[0].Quantity == 2 &&
			input.Address.Country == "Serbia" &&
			input.Address.Phone == "+381641234567" &&
			input.PaymentMethod == order.PaymentCash
	})).Return(&order.Order{ID: uuid.Must(uuid.NewV4()), UserID: customer.ID, Status: order.StatusPending, TotalAmount: 26_380}, nil)

	req := authenticatedRequest(t, customer, http.MethodPost, "/", checkoutBody(productID, nil))
	rec := httptest.NewRecorder()

	orderTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, order.StatusPending, resp.Order.Status)
	svc.AssertExpectations(t)
}

func TestOrderHandler_CreateOrder_ValidationFailures(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name      string
		overrides map[string]any
		wantField string
	}{
		{name: "missing_first_name", overrides: map[string]any{"firstName": ""}, wantField: "FirstName"},
		{name: "email_without_tld", overrides: map[string]any{"email": "marko@example"}, wantField: "Email"},
		{name: "phone_too_short", overrides: map[string]any{"phone": "+38164123"}, wantField: "Phone"},
		{name: "foreign_phone_prefix", overrides: map[string]any{"phone": "+49641234567"}, wantField: "Phone"},
		{name: "unsupported_payment", overrides: map[string]any{"paymentMethod": "crypto"}, wantField: "PaymentMethod"},
		{name: "no_items", overrides: map[string]any{"items": []map[string]any{}}, wantField: "Items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockOrderService)

			req := authenticatedRequest(t, testCustomer(), http.MethodPost, "/", checkoutBody(productID, tt.overrides))
			rec := httptest.NewRecorder()

			orderTestRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantField)
			svc.AssertNotCalled(t, "Checkout")
		})
	}
}

func TestOrderHandler_CreateOrder_ReportsFirstInvalidFieldOnly(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())
	svc := new(mockOrderService)

	// Email and phone are both invalid; only the email is reported.
	body := checkoutBody(productID, map[string]any{"email": "marko@example", "phone": "12345"})
	req := authenticatedRequest(t, testCustomer(), http.MethodPost, "/", body)
	rec := httptest.NewRecorder()

	orderTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email")
	assert.NotContains(t, rec.Body.String(), "Phone")
}

func TestOrderHandler_UpdateOrder_ItemsImmutable(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	svc := new(mockOrderService)

	body := `{"status":"processing","items":[{"productId":"x","quantity":1}]}`
	req := authenticatedRequest(t, testAdmin(), http.MethodPut, "/"+orderID.String(), body)
	rec := httptest.NewRecorder()

	orderTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "immutable")
	svc.AssertNotCalled(t, "UpdateOrderStatus")
}

func TestOrderHandler_UpdateOrder_AddressImmutable(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	svc := new(mockOrderService)

	body := `{"status":"processing","shippingAddress":{"street":"Nova 2"}}`
	req := authenticatedRequest(t, testAdmin(), http.MethodPut, "/"+orderID.String(), body)
	rec := httptest.NewRecorder()

	orderTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "immutable")
	svc.AssertNotCalled(t, "UpdateOrderStatus")
}

func TestOrderHandler_UpdateOrder_StatusChange(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	svc := new(mockOrderService)
	svc.On("UpdateOrderStatus", mock.Anything, orderID, order.StatusProcessing).Return(nil)
	svc.On("GetOrderByID", mock.Anything, orderID).
		Return(&order.Order{ID: orderID, Status: order.StatusProcessing}, nil)

	req := authenticatedRequest(t, testAdmin(), http.MethodPut, "/"+orderID.String(), `{"status":"processing"}`)
	rec := httptest.NewRecorder()

	orderTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, order.StatusProcessing, resp.Order.Status)
	svc.AssertExpectations(t)
}

func TestOrderHandler_UpdateOrder_InvalidTransitionConflict(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	svc := new(mockOrderService)
	svc.On("UpdateOrderStatus", mock.Anything, orderID, order.StatusPending).
		Return(fmt.Errorf("%w: completed -> pending", order.ErrInvalidStatusTransition))

	req := authenticatedRequest(t, testAdmin(), http.MethodPut, "/"+orderID.String(), `{"status":"pending"}`)
	rec := httptest.NewRecorder()

	orderTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOrderHandler_UpdateOrder_RequiresAdmin(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	svc := new(mockOrderService)

	req := authenticatedRequest(t, testCustomer(), http.MethodPut, "/"+orderID.String(), `{"status":"processing"}`)
	rec := httptest.NewRecorder()

	orderTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertNotCalled(t, "UpdateOrderStatus")
}

func TestOrderHandler_GetOrdersByUser_OwnerOnly(t *testing.T) {
	customer := testCustomer()
	otherUser := uuid.Must(uuid.NewV4())
	svc := new(mockOrderService)

	req := authenticatedRequest(t, customer, http.MethodGet, "/user/"+otherUser.String(), "")
	rec := httptest.NewRecorder()

	orderTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertNotCalled(t, "GetOrdersByUserID")
}

func TestOrderHandler_GetOrdersByUser_AdminSeesAnyone(t *testing.T) {
	admin := testAdmin()
	customerID := uuid.Must(uuid.NewV4())

	svc := new(mockOrderService)
	svc.On("GetOrdersByUserID", mock.Anything, customerID).Return([]order.Order{}, nil)

	req := authenticatedRequest(t, admin, http.MethodGet, "/user/"+customerID.String(), "")
	rec := httptest.NewRecorder()

	orderTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestOrderHandler_GetOrder_ForeignOrderForbidden(t *testing.T) {
	customer := testCustomer()
	orderID := uuid.Must(uuid.NewV4())

	svc := new(mockOrderService)
	svc.On("GetOrderByID", mock.Anything, orderID).
		Return(&order.Order{ID: orderID, UserID: uuid.Must(uuid.NewV4())}, nil)

	req := authenticatedRequest(t, customer, http.MethodGet, "/"+orderID.String(), "")
	rec := httptest.NewRecorder()

	orderTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrderHandler_ListOrders_StatusFilter(t *testing.T) {
	admin := testAdmin()

	svc := new(mockOrderService)
	svc.On("ListOrders", mock.Anything, 2, 10, mock.MatchedBy(func(status *order.OrderStatus) bool {
		return status != nil && *status == order.StatusPending
	})).Return([]order.Order{}, order.Pagination{Page: 2, Limit: 10}, nil)

	req := authenticatedRequest(t, admin, http.MethodGet, "/?page=2&limit=10&status=pending", "")
	rec := httptest.NewRecorder()

	orderTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
