package cart

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
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInsufficientStock = errors.New("not enough stock for requested quantity")
)

// Summary is the cart plus the totals the cart page previews. The shipping
// fee here comes from the same pricing function checkout uses.
type Summary struct {
	Cart        Cart  `json:"cart"`
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Total       int64 `json:"total"`
}

type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (Cart, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (Summary, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) (Cart, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int32) (Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) (Cart, error)
}

type service struct {
	repo    Repository
	catalog catalog.Service
}

func NewService(repo Repository, catalogSvc catalog.Service) Service {
	return &service{repo: repo, catalog: catalogSvc}
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (Cart, error) {
	userCart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch cart")
		return Cart{}, fmt.Errorf("service: failed to fetch cart: %w", err)
	}

	return userCart, nil
}

func (s *service) GetSummary(ctx context.Context, userID uuid.UUID) (Summary, error) {
	userCart, err := s.GetCart(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	subtotal := userCart.Subtotal()
	fee := pricing.ShippingFee(subtotal)

	return Summary{
		Cart:        userCart,
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       pricing.Total(subtotal, 0, fee),
	}, nil
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) (Cart, error) {
	if quantity < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return Cart{}, catalog.ErrProductNotFound
		}
		return Cart{}, fmt.Errorf("service: failed to resolve product for cart add: %w", err)
	}

	if !product.HasStockFor(quantity) {
		log.Warn().
			Stringer("user_id", userID).
			Stringer("product_id", productID).
			Int32("quantity", quantity).
			Msg("service: add to cart rejected, not enough stock")
		return Cart{}, ErrInsufficientStock
	}

	if err := s.repo.AddItem(ctx, userID, productID, quantity); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to add cart item")
		return Cart{}, fmt.Errorf("service: failed to add cart item: %w", err)
	}

	log.Info().
		Stringer("user_id", userID).
		Stringer("product_id", productID).
		Int32("quantity", quantity).
		Msg("service: cart item added")

	return s.GetCart(ctx, userID)
}

func (s *service) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int32) (Cart, error) {
	// Removal is a distinct operation; quantity can never drop below 1 here.
	if quantity < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return Cart{}, catalog.ErrProductNotFound
		}
		return Cart{}, fmt.Errorf("service: failed to resolve product for quantity update: %w", err)
	}

	if !product.HasStockFor(quantity) {
		return Cart{}, ErrInsufficientStock
	}

	err = s.repo.UpdateQuantity(ctx, userID, productID, quantity)
	if err != nil {
		if errors.Is(err, ErrCartItemNotFound) {
			return Cart{}, ErrCartItemNotFound
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to update cart quantity")
		return Cart{}, fmt.Errorf("service: failed to update cart quantity: %w", err)
	}

	return s.GetCart(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (Cart, error) {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to remove cart item")
		return Cart{}, fmt.Errorf("service: failed to remove cart item: %w", err)
	}

	return s.GetCart(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (Cart, error) {
	if err := s.repo.Clear(ctx, userID); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to clear cart")
		return Cart{}, fmt.Errorf("service: failed to clear cart: %w", err)
	}

	log.Info().Stringer("user_id", userID).Msg("service: cart cleared")

	return s.GetCart(ctx, userID)
}
