package pricing_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spasojewagner/tehnotrade-api/internal/pricing"
)

func TestShippingFee(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		wantFee  int64
	}{
		{name: "below_threshold", subtotal: 49_999, wantFee: pricing.FlatShippingFee},
		{name: "exactly_threshold_still_pays", subtotal: 50_000, wantFee: pricing.FlatShippingFee},
		{name: "just_above_threshold_free", subtotal: 50_001, wantFee: 0},
		{name: "far_above_threshold_free", subtotal: 1_000_000, wantFee: 0},
		{name: "empty_cart", subtotal: 0, wantFee: pricing.FlatShippingFee},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantFee, pricing.ShippingFee(tt.subtotal))
		})
	}
}

func TestResolvePromo(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		wantPercent int64
		wantErr     error
	}{
		{name: "popust10", code: "POPUST10", wantPercent: 10},
		{name: "novo20", code: "NOVO20", wantPercent: 20},
		{name: "lowercase_accepted", code: "popust10", wantPercent: 10},
		{name: "surrounding_whitespace_trimmed", code: "  NOVO20 ", wantPercent: 20},
		{name: "unknown_code", code: "LETO30", wantErr: pricing.ErrUnknownPromo},
		{name: "empty_code", code: "", wantErr: pricing.ErrUnknownPromo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			percent, err := pricing.ResolvePromo(tt.code)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPercent, percent)
		})
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		percent  int64
		want     int64
	}{
		{name: "ten_percent", subtotal: 10_000, percent: 10, want: 1_000},
		{name: "twenty_percent", subtotal: 10_000, percent: 20, want: 2_000},
		{name: "rounds_down", subtotal: 999, percent: 10, want: 99},
		{name: "zero_subtotal", subtotal: 0, percent: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pricing.Discount(tt.subtotal, tt.percent))
		})
	}
}

func TestTotal(t *testing.T) {
	// Discount applies to the subtotal; shipping is added after.
	assert.Equal(t, int64(9_400), pricing.Total(10_000, 1_000, 400))
	assert.Equal(t, int64(60_000), pricing.Total(60_000, 0, 0))
}
