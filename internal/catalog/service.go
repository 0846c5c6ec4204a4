package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var ErrInvalidPrice = errors.New("product price cannot be negative")

type Service interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error)
	ListProducts(ctx context.Context, page, limit int) ([]Product, int64, error)
	UpdateProduct(ctx context.Context, product *Product) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		log.Error().Err(err).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", product.ID).Str("sku", product.SKU).Msg("service: product created")
	return product, nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product by id")
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}

	return product, nil
}

func (s *service) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	products, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch products by ids")
		return nil, fmt.Errorf("service: failed to fetch products by ids: %w", err)
	}

	return products, nil
}

func (s *service) ListProducts(ctx context.Context, page, limit int) ([]Product, int64, error) {
	products, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, 0, fmt.Errorf("service: failed to list products: %w", err)
	}

	return products, total, nil
}

func (s *service) UpdateProduct(ctx context.Context, product *Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	err := s.repo.Update(ctx, product)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", product.ID).Msg("service: failed to update product")
		return fmt.Errorf("service: failed to update product: %w", err)
	}

	return nil
}

func validateProduct(product *Product) error {
	if product.Name == "" {
		return errors.New("product name is required")
	}
	if product.Price < 0 {
		return ErrInvalidPrice
	}
	if product.Stock != nil && *product.Stock < 0 {
		return errors.New("product stock cannot be negative")
	}
	return nil
}
