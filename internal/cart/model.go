package cart

import (
	"time"

	"github.com/gofrs/uuid"
)

// CartItem is one (product, quantity) line of a user's cart. The product
// display fields are denormalized from the catalog at read time; the cart
// itself owns only the product reference, the quantity and the timestamp.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int32     `json:"quantity" db:"quantity"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`

	Name  string `json:"name" db:"name"`
	Brand string `json:"brand" db:"brand"`
	Price int64  `json:"price" db:"price"`
	Stock *int32 `json:"stock" db:"stock"`
	Image string `json:"image" db:"image"`
}

// Cart is the authoritative list of items one user intends to purchase.
// There is exactly one cart per user, created implicitly on first add.
type Cart struct {
	UserID uuid.UUID  `json:"user_id"`
	Items  []CartItem `json:"items"`
}

// Subtotal sums price×quantity over all items at current catalog prices.
func (c Cart) Subtotal() int64 {
	var subtotal int64
	for _, item := range c.Items {
		subtotal += item.Price * int64(item.Quantity)
	}
	return subtotal
}
