package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spasojewagner/tehnotrade-api/internal/catalog"
	"github.com/spasojewagner/tehnotrade-api/internal/pricing"
)

var (
	ErrEmptyOrder              = errors.New("order must contain at least one item")
	ErrInsufficientStock       = errors.New("not enough stock for requested quantity")
	ErrInvalidStatus           = errors.New("unknown order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// CheckoutItem carries a product reference and quantity only. Prices are
// intentionally never accepted from the client; they are resolved from the
// catalog here so a tampered request cannot change what is charged.
type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int32
}

type CheckoutInput struct {
	UserID        uuid.UUID
	Items         []CheckoutItem
	Address       ShippingAddress
	PaymentMethod PaymentMethod
	PromoCode     string
}

type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListOrders(ctx context.Context, page, limit int, status *OrderStatus) ([]Order, Pagination, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	GetStats(ctx context.Context) (Stats, error)
}

type service struct {
	orderRepo Repository
	catalog   catalog.Service
}

func NewService(orderRepo Repository, catalogSvc catalog.Service) Service {
	return &service{
		orderRepo: orderRepo,
		catalog:   catalogSvc,
	}
}

// Checkout turns a non-empty item list plus delivery data into exactly one
// pending order. Item prices and names are snapshotted from the catalog, the
// promo code is resolved server-side, and the cart is cleared in the same
// transaction that persists the order.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*Order, error) {
	if len(input.Items) == 0 {
		log.Warn().Stringer("user_id", input.UserID).Msg("service: attempt to checkout with no items")
		return nil, ErrEmptyOrder
	}

	if !input.PaymentMethod.IsValid() {
		return nil, fmt.Errorf("service: unsupported payment method %q", input.PaymentMethod)
	}

	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, errors.New("service: product id in order item cannot be nil")
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("service: order item quantity for product %s must be at least 1", item.ProductID)
		}
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.catalog.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve products for checkout: %w", err)
	}

	var subtotal int64
	orderItems := make([]OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		product, ok := products[item.ProductID]
		if !ok {
			log.Warn().Stringer("product_id", item.ProductID).Msg("service: checkout references unknown product")
			return nil, catalog.ErrProductNotFound
		}

		if !product.HasStockFor(item.Quantity) {
			log.Warn().
				Stringer("product_id", item.ProductID).
				Int32("quantity", item.Quantity).
				Msg("service: checkout rejected, not enough stock")
			return nil, ErrInsufficientStock
		}

		orderItems = append(orderItems, OrderItem{
			ProductID:   item.ProductID,
			Name:        product.Name,
			Quantity:    item.Quantity,
			PriceAtTime: product.Price,
		})
		subtotal += product.Price * int64(item.Quantity)
	}

	var promoCode *string
	var discount int64
	if input.PromoCode != "" {
		percent, err := pricing.ResolvePromo(input.PromoCode)
		if err != nil {
			return nil, err
		}
		discount = pricing.Discount(subtotal, percent)
		resolved := input.PromoCode
		promoCode = &resolved
	}

	shippingFee := pricing.ShippingFee(subtotal)

	ord := &Order{
		UserID:         input.UserID,
		Status:         StatusPending,
		PaymentMethod:  input.PaymentMethod,
		Items:          orderItems,
		Address:        input.Address,
		PromoCode:      promoCode,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		ShippingFee:    shippingFee,
		TotalAmount:    pricing.Total(subtotal, discount, shippingFee),
	}

	if err := s.orderRepo.Create(ctx, ord); err != nil {
		log.Error().Err(err).Stringer("user_id", input.UserID).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().
		Stringer("order_id", ord.ID).
		Stringer("user_id", ord.UserID).
		Int64("total_amount", ord.TotalAmount).
		Msg("service: order created")

	return ord, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	ord, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return ord, nil
}

func (s *service) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}

func (s *service) ListOrders(ctx context.Context, page, limit int, status *OrderStatus) ([]Order, Pagination, error) {
	if status != nil && !status.IsValid() {
		return nil, Pagination{}, ErrInvalidStatus
	}

	orders, pagination, err := s.orderRepo.List(ctx, page, limit, status)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, Pagination{}, fmt.Errorf("service: failed to list orders: %w", err)
	}

	return orders, pagination, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus) error {
	if !newStatus.IsValid() {
		return ErrInvalidStatus
	}

	currentOrder, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to get order for status update")
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if currentOrder.Status == newStatus {
		log.Info().Stringer("order_id", orderID).Stringer("status", newStatus).Msg("service: order status unchanged, no update needed")
		return nil
	}

	if !CanTransition(currentOrder.Status, newStatus) {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", currentOrder.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, currentOrder.Status, newStatus)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().
		Stringer("order_id", orderID).
		Stringer("old_status", currentOrder.Status).
		Stringer("new_status", newStatus).
		Msg("service: order status updated")

	return nil
}

// DeleteOrder is an administrative escape hatch, not part of the regular
// lifecycle.
func (s *service) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	err := s.orderRepo.Delete(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to delete order")
		return fmt.Errorf("service: failed to delete order: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Msg("service: order deleted")
	return nil
}

func (s *service) GetStats(ctx context.Context) (Stats, error) {
	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to compute order stats")
		return Stats{}, fmt.Errorf("service: failed to compute order stats: %w", err)
	}

	return stats, nil
}
