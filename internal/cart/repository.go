package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCartItemNotFound = errors.New("cart item not found")

type Repository interface {
	GetCart(ctx context.Context, userID uuid.UUID) (Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) error
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int32) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetCart(ctx context.Context, userID uuid.UUID) (Cart, error) {
	query := `
		SELECT ci.product_id, ci.quantity, ci.added_at,
		       p.name, p.brand, p.price, p.stock,
		       COALESCE(p.images[1], '') AS image
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.added_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return Cart{}, fmt.Errorf("repository: failed to query cart for user %s: %w", userID, err)
	}
	defer rows.Close()

	items := make([]CartItem, 0)
	for rows.Next() {
		var item CartItem
		err := rows.Scan(
			&item.ProductID,
			&item.Quantity,
			&item.AddedAt,
			&item.Name,
			&item.Brand,
			&item.Price,
			&item.Stock,
			&item.Image,
		)
		if err != nil {
			return Cart{}, fmt.Errorf("repository: failed to scan cart item for user %s: %w", userID, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return Cart{}, fmt.Errorf("repository: error iterating cart items for user %s: %w", userID, err)
	}

	return Cart{UserID: userID, Items: items}, nil
}

// AddItem upserts a cart line. The (user_id, product_id) primary key makes the
// merge authoritative: adding an already-present product increments its
// quantity instead of inserting a duplicate row.
func (r *postgresRepository) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`

	_, err := r.db.Exec(ctx, query, userID, productID, quantity, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to add cart item for user %s: %w", userID, err)
	}

	return nil
}

func (r *postgresRepository) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int32) error {
	query := `
		UPDATE cart_items
		SET quantity = $1
		WHERE user_id = $2 AND product_id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, quantity, userID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to update cart item quantity for user %s: %w", userID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// RemoveItem is idempotent: removing an absent item is not an error.
func (r *postgresRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	_, err := r.db.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to remove cart item for user %s: %w", userID, err)
	}

	return nil
}

func (r *postgresRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1`

	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("repository: failed to clear cart for user %s: %w", userID, err)
	}

	return nil
}
