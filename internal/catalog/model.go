package catalog

import (
	"time"

	"github.com/gofrs/uuid"
)

// Product is a catalog entry. Price is in integer RSD. Stock is nil when the
// product's stock is not tracked; a nil stock never blocks a purchase.
type Product struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Brand     string    `json:"brand" db:"brand"`
	SKU       string    `json:"sku" db:"sku"`
	Price     int64     `json:"price" db:"price"`
	Stock     *int32    `json:"stock" db:"stock"`
	Images    []string  `json:"images" db:"images"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasStockFor reports whether the product can cover the requested quantity.
func (p Product) HasStockFor(quantity int32) bool {
	if p.Stock == nil {
		return true
	}
	return *p.Stock >= quantity
}
