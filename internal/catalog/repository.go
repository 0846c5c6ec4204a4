package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error)
	List(ctx context.Context, page, limit int) ([]Product, int64, error)
	Update(ctx context.Context, product *Product) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, product *Product) error {
	if product.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product ID: %w", err)
		}
		product.ID = id
	}

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `
		INSERT INTO products (id, name, brand, sku, price, stock, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Brand,
		product.SKU,
		product.Price,
		product.Stock,
		product.Images,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		SELECT id, name, brand, sku, price, stock, images, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var product Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Brand,
		&product.SKU,
		&product.Price,
		&product.Stock,
		&product.Images,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	return &product, nil
}

func (r *postgresRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]Product{}, nil
	}

	query := `
		SELECT id, name, brand, sku, price, stock, images, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products by ids: %w", err)
	}
	defer rows.Close()

	products := make(map[uuid.UUID]Product, len(ids))
	for rows.Next() {
		var product Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Brand,
			&product.SKU,
			&product.Price,
			&product.Stock,
			&product.Images,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products[product.ID] = product
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) List(ctx context.Context, page, limit int) ([]Product, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count products: %w", err)
	}

	query := `
		SELECT id, name, brand, sku, price, stock, images, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var product Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Brand,
			&product.SKU,
			&product.Price,
			&product.Stock,
			&product.Images,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository: error iterating products: %w", err)
	}

	return products, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, product *Product) error {
	query := `
		UPDATE products
		SET name = $1, brand = $2, sku = $3, price = $4, stock = $5, images = $6, updated_at = $7
		WHERE id = $8
	`

	cmdTag, err := r.db.Exec(ctx, query,
		product.Name,
		product.Brand,
		product.SKU,
		product.Price,
		product.Stock,
		product.Images,
		time.Now().UTC(),
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", product.ID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}
