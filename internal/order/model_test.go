package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spasojewagner/tehnotrade-api/internal/order"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    order.OrderStatus
		to      order.OrderStatus
		allowed bool
	}{
		{order.StatusPending, order.StatusProcessing, true},
		{order.StatusPending, order.StatusCancelled, true},
		{order.StatusPending, order.StatusCompleted, false},
		{order.StatusProcessing, order.StatusCompleted, true},
		{order.StatusProcessing, order.StatusCancelled, true},
		{order.StatusProcessing, order.StatusPending, false},
		{order.StatusCompleted, order.StatusPending, false},
		{order.StatusCompleted, order.StatusProcessing, false},
		{order.StatusCompleted, order.StatusCancelled, false},
		{order.StatusCancelled, order.StatusPending, false},
		{order.StatusCancelled, order.StatusProcessing, false},
		{order.StatusCancelled, order.StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, order.CanTransition(tt.from, tt.to))
		})
	}
}

func TestOrderStatusIsValid(t *testing.T) {
	for _, status := range []order.OrderStatus{
		order.StatusPending, order.StatusProcessing, order.StatusCompleted, order.StatusCancelled,
	} {
		assert.True(t, status.IsValid())
	}
	assert.False(t, order.OrderStatus("shipped").IsValid())
	assert.False(t, order.OrderStatus("").IsValid())
}

func TestPaymentMethodIsValid(t *testing.T) {
	assert.True(t, order.PaymentCash.IsValid())
	assert.True(t, order.PaymentCard.IsValid())
	assert.False(t, order.PaymentMethod("crypto").IsValid())
}
