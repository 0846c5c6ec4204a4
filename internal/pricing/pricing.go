// Package pricing is the single home for storefront money math: the
// free-shipping rule, promo code resolution and discount amounts. Cart
// previews and checkout both go through these functions so the two can
// never disagree on a total.
package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are integer RSD (no fractional dinars in the catalog).
const (
	FreeShippingThreshold int64 = 50_000
	FlatShippingFee       int64 = 400
)

var ErrUnknownPromo = errors.New("unknown promo code")

// promoPercents maps a promo code to its percentage discount off the subtotal.
var promoPercents = map[string]int64{
	"POPUST10": 10,
	"NOVO20":   20,
}

// ShippingFee returns the delivery fee for a given subtotal. Shipping is free
// only strictly above the threshold: a subtotal of exactly 50 000 still pays
// the flat fee.
func ShippingFee(subtotal int64) int64 {
	if subtotal > FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// ResolvePromo validates a promo code and returns its discount percentage.
// Codes are matched case-insensitively and ignoring surrounding whitespace.
func ResolvePromo(code string) (int64, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	percent, ok := promoPercents[normalized]
	if !ok {
		return 0, ErrUnknownPromo
	}
	return percent, nil
}

// Discount computes the discount amount for a subtotal at the given
// percentage, rounded down to a whole minor unit.
func Discount(subtotal, percent int64) int64 {
	return decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromInt(percent)).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
}

// Total combines the parts of an order total. The discount applies to the
// subtotal only; shipping is charged on top, after the discount.
func Total(subtotal, discount, shippingFee int64) int64 {
	return subtotal - discount + shippingFee
}
