package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrOrderNotFound = errors.New("order not found")

type Repository interface {
	// Create inserts the order with its items and empties the owner's cart in
	// one transaction, so a successful checkout always leaves the cart empty
	// and a failed one leaves it intact.
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	List(ctx context.Context, page, limit int, status *OrderStatus) ([]Order, Pagination, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus) error
	Delete(ctx context.Context, orderID uuid.UUID) error
	Stats(ctx context.Context) (Stats, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const orderColumns = `id, user_id, status, payment_method,
	ship_street, ship_city, ship_postal_code, ship_country, ship_phone, ship_note,
	promo_code, subtotal, discount_amount, shipping_fee, total_amount, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, orderInput *Order) (err error) {
	if orderInput.ID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", genErr)
		}
		orderInput.ID = genID
	}

	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderInput.ID).Msg("repository: failed to rollback after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderInput.ID).Msg("repository: failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	now := time.Now().UTC()
	orderInput.CreatedAt = now
	orderInput.UpdatedAt = now

	queryOrder := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = tx.Exec(ctx, queryOrder,
		orderInput.ID,
		orderInput.UserID,
		string(orderInput.Status),
		string(orderInput.PaymentMethod),
		orderInput.Address.Street,
		orderInput.Address.City,
		orderInput.Address.PostalCode,
		orderInput.Address.Country,
		orderInput.Address.Phone,
		orderInput.Address.Note,
		orderInput.PromoCode,
		orderInput.Subtotal,
		orderInput.DiscountAmount,
		orderInput.ShippingFee,
		orderInput.TotalAmount,
		orderInput.CreatedAt,
		orderInput.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, name, quantity, price_at_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range orderInput.Items {
		item := &orderInput.Items[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			err = fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
			return err
		}
		item.ID = itemID
		item.OrderID = orderInput.ID
		item.CreatedAt = now

		_, err = tx.Exec(ctx, queryItem,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Quantity,
			item.PriceAtTime,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", orderInput.ID, err)
		}
	}

	// Checkout converts the cart into exactly one order; the cart is emptied
	// in the same transaction.
	_, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, orderInput.UserID)
	if err != nil {
		return fmt.Errorf("repository: failed to clear cart for user %s: %w", orderInput.UserID, err)
	}

	return nil
}

func scanOrder(row pgx.Row, order *Order) error {
	return row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.PaymentMethod,
		&order.Address.Street,
		&order.Address.City,
		&order.Address.PostalCode,
		&order.Address.Country,
		&order.Address.Phone,
		&order.Address.Note,
		&order.PromoCode,
		&order.Subtotal,
		&order.DiscountAmount,
		&order.ShippingFee,
		&order.TotalAmount,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
}

func (r *postgresRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var ord Order
	err := scanOrder(r.db.QueryRow(ctx, query, orderID), &ord)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", orderID, err)
	}

	items, err := r.itemsForOrders(ctx, []uuid.UUID{orderID})
	if err != nil {
		return nil, err
	}
	ord.Items = items[orderID]
	if ord.Items == nil {
		ord.Items = make([]OrderItem, 0)
	}

	return &ord, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	orders, orderIDs, err := collectOrders(rows)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to collect orders for user %s: %w", userID, err)
	}

	if err := r.hydrateItems(ctx, orders, orderIDs); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *postgresRepository) List(ctx context.Context, page, limit int, status *OrderStatus) ([]Order, Pagination, error) {
	countQuery := `SELECT COUNT(*) FROM orders WHERE ($1::text IS NULL OR status = $1)`
	listQuery := `SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var statusFilter *string
	if status != nil {
		s := string(*status)
		statusFilter = &s
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, statusFilter).Scan(&total); err != nil {
		return nil, Pagination{}, fmt.Errorf("repository: failed to count orders: %w", err)
	}

	rows, err := r.db.Query(ctx, listQuery, statusFilter, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders, orderIDs, err := collectOrders(rows)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("repository: failed to collect orders: %w", err)
	}

	if err := r.hydrateItems(ctx, orders, orderIDs); err != nil {
		return nil, Pagination{}, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return orders, Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus touches only the status and updated_at columns; items, address
// and amounts stay untouched.
func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), time.Now().UTC(), orderID)
	if err != nil {
		return fmt.Errorf("repository: failed to update order status %s: %w", orderID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, orderID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete order %s: %w", orderID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *postgresRepository) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{StatusCounts: make(map[OrderStatus]int64)}

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("repository: failed to query order status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status OrderStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, fmt.Errorf("repository: failed to scan status count: %w", err)
		}
		stats.StatusCounts[status] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("repository: error iterating status counts: %w", err)
	}

	stats.PendingCount = stats.StatusCounts[StatusPending]

	err = r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = $1`,
		string(StatusCompleted),
	).Scan(&stats.Revenue)
	if err != nil {
		return Stats{}, fmt.Errorf("repository: failed to compute revenue: %w", err)
	}

	return stats, nil
}

func collectOrders(rows pgx.Rows) ([]Order, []uuid.UUID, error) {
	orders := make([]Order, 0)
	orderIDs := make([]uuid.UUID, 0)

	for rows.Next() {
		var ord Order
		if err := scanOrder(rows, &ord); err != nil {
			return nil, nil, fmt.Errorf("failed to scan order: %w", err)
		}
		ord.Items = make([]OrderItem, 0)
		orders = append(orders, ord)
		orderIDs = append(orderIDs, ord.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, orderIDs, nil
}

func (r *postgresRepository) hydrateItems(ctx context.Context, orders []Order, orderIDs []uuid.UUID) error {
	if len(orderIDs) == 0 {
		return nil
	}

	itemsByOrder, err := r.itemsForOrders(ctx, orderIDs)
	if err != nil {
		return err
	}

	for i := range orders {
		if items, ok := itemsByOrder[orders[i].ID]; ok {
			orders[i].Items = items
		}
	}

	return nil
}

func (r *postgresRepository) itemsForOrders(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, quantity, price_at_time, created_at
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	itemsByOrder := make(map[uuid.UUID][]OrderItem)
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.Quantity,
			&item.PriceAtTime,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	return itemsByOrder, nil
}
