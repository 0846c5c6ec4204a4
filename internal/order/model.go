package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

func (os OrderStatus) String() string {
	return string(os)
}

// IsValid reports whether the value is one of the known statuses.
func (os OrderStatus) IsValid() bool {
	switch os {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// allowedTransitions encodes the order lifecycle: pending → processing →
// completed, with cancellation reachable from any non-terminal state.
// Completed and cancelled are terminal.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusProcessing: true,
		StatusCancelled:  true,
	},
	StatusProcessing: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return allowedTransitions[from][to]
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

func (pm PaymentMethod) IsValid() bool {
	return pm == PaymentCash || pm == PaymentCard
}

// ShippingAddress is embedded in its order and immutable after creation.
type ShippingAddress struct {
	Street     string `json:"street" db:"ship_street"`
	City       string `json:"city" db:"ship_city"`
	PostalCode string `json:"postal_code" db:"ship_postal_code"`
	Country    string `json:"country" db:"ship_country"`
	Phone      string `json:"phone,omitempty" db:"ship_phone"`
	Note       string `json:"note,omitempty" db:"ship_note"`
}

// OrderItem is a snapshot taken at checkout. PriceAtTime is fixed at order
// creation and never recalculated, even if the catalog price later changes.
type OrderItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OrderID     uuid.UUID `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	Name        string    `json:"name" db:"name"`
	Quantity    int32     `json:"quantity" db:"quantity"`
	PriceAtTime int64     `json:"price_at_time" db:"price_at_time"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Order is an immutable-after-creation snapshot of a cart; only Status (and
// UpdatedAt alongside it) changes after checkout.
type Order struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	Status         OrderStatus     `json:"status" db:"status"`
	PaymentMethod  PaymentMethod   `json:"payment_method" db:"payment_method"`
	Items          []OrderItem     `json:"items" db:"-"`
	Address        ShippingAddress `json:"shipping_address"`
	PromoCode      *string         `json:"promo_code,omitempty" db:"promo_code"`
	Subtotal       int64           `json:"subtotal" db:"subtotal"`
	DiscountAmount int64           `json:"discount_amount" db:"discount_amount"`
	ShippingFee    int64           `json:"shipping_fee" db:"shipping_fee"`
	TotalAmount    int64           `json:"total_amount" db:"total_amount"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Pagination describes one page of an admin order listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Stats are derived on read, never stored redundantly.
type Stats struct {
	StatusCounts map[OrderStatus]int64 `json:"status_counts"`
	PendingCount int64                 `json:"pending_count"`
	Revenue      int64                 `json:"revenue"`
}
