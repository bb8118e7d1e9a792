package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusIsValid(t *testing.T) {
	for _, status := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
		OrderStatusRefunded,
	} {
		assert.True(t, status.IsValid(), string(status))
	}
	assert.False(t, OrderStatus("archived").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.True(t, OrderStatusRefunded.IsTerminal())
	assert.False(t, OrderStatusDelivered.IsTerminal(), "delivered still allows refund")
	assert.False(t, OrderStatusPending.IsTerminal())
}

func TestCheckoutStatusIsTerminal(t *testing.T) {
	assert.False(t, CheckoutStatusActive.IsTerminal())
	assert.True(t, CheckoutStatusCompleted.IsTerminal())
	assert.True(t, CheckoutStatusAbandoned.IsTerminal())
}

func TestOrderOwnedBy(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()

	userOrder := &Order{UserID: &userID}
	assert.True(t, userOrder.OwnedBy(&userID, ""))
	assert.False(t, userOrder.OwnedBy(&otherID, ""))
	assert.False(t, userOrder.OwnedBy(nil, "sess-1"), "user order never matches a session")

	guestOrder := &Order{SessionID: "sess-1"}
	assert.True(t, guestOrder.OwnedBy(nil, "sess-1"))
	assert.False(t, guestOrder.OwnedBy(nil, "sess-2"))
	assert.False(t, guestOrder.OwnedBy(&userID, ""))
}
