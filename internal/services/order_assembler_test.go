package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/velora/internal/models"
)

var orderNumberPattern = regexp.MustCompile(`^VLR\d{6}[A-Z2-9]{4}$`)

func TestCompleteCheckoutAssemblesOrder(t *testing.T) {
	pricing := RatePricing{TaxRateBps: 1000, ShippingFee: 500}
	env := newCheckoutEnv(pricing)
	owner := GuestIdentity("sess-1")

	// Two cart lines: 2 x 1999 and 1 x 2000.
	checkout := env.createCheckout(t, owner, [2]int64{1999, 2}, [2]int64{2000, 1})

	order, err := env.service.Complete(context.Background(), checkout.ID, owner)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
	assert.Equal(t, "sess-1", order.SessionID)
	assert.Nil(t, order.UserID)
	assert.Equal(t, checkout.ID, order.CheckoutID)

	assert.Equal(t, int64(5998), order.Subtotal)
	assert.Equal(t, int64(599), order.Tax)
	assert.Equal(t, int64(500), order.Shipping)
	assert.Equal(t, order.Subtotal+order.Tax+order.Shipping-order.Discount, order.Total)

	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(3998), order.Items[0].LineTotal)
	assert.Equal(t, int64(2000), order.Items[1].LineTotal)
	assert.Equal(t, "Tashkent", order.ShippingAddress.City)

	stored, err := env.checkouts.Get(context.Background(), checkout.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutStatusCompleted, stored.Status)

	itemIDs, err := parseCartItemIDs(checkout.CartItemIDs)
	require.NoError(t, err)
	remaining, err := env.cartItems.List(context.Background(), itemIDs)
	require.NoError(t, err)
	assert.Empty(t, remaining, "cart items are consumed on completion")
}

func TestCompleteIsExclusive(t *testing.T) {
	env := newCheckoutEnv(nil)
	owner := GuestIdentity("sess-1")
	checkout := env.createCheckout(t, owner, [2]int64{1000, 1})

	_, err := env.service.Complete(context.Background(), checkout.ID, owner)
	require.NoError(t, err)

	_, err = env.service.Complete(context.Background(), checkout.ID, owner)
	assert.True(t, IsKind(err, KindInvalidState), "completed checkout cannot complete again")
}

func TestCompleteLeavesCheckoutActiveOnFailure(t *testing.T) {
	env := newCheckoutEnv(nil)
	owner := GuestIdentity("sess-1")
	checkout := env.createCheckout(t, owner, [2]int64{1000, 1})

	// Drop the cart item between validation and completion.
	itemIDs, err := parseCartItemIDs(checkout.CartItemIDs)
	require.NoError(t, err)
	require.NoError(t, env.cartItems.Delete(context.Background(), itemIDs))

	_, err = env.service.Complete(context.Background(), checkout.ID, owner)
	assert.True(t, IsKind(err, KindCartItemInvalid))

	stored, err := env.checkouts.Get(context.Background(), checkout.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutStatusActive, stored.Status, "failed completion keeps the checkout active")
}

func TestCompleteRejectsVanishedProduct(t *testing.T) {
	env := newCheckoutEnv(nil)
	owner := GuestIdentity("sess-1")
	checkout := env.createCheckout(t, owner, [2]int64{1000, 1})

	env.products.mu.Lock()
	env.products.products = map[uuid.UUID]*models.Product{}
	env.products.mu.Unlock()

	_, err := env.service.Complete(context.Background(), checkout.ID, owner)
	assert.True(t, IsKind(err, KindCartItemInvalid))
}

func TestCompleteRetriesOnOrderNumberCollision(t *testing.T) {
	env := newCheckoutEnv(nil)
	owner := GuestIdentity("sess-1")
	checkout := env.createCheckout(t, owner, [2]int64{1000, 1})

	env.orders.forceDuplicates = 2

	order, err := env.service.Complete(context.Background(), checkout.ID, owner)
	require.NoError(t, err)
	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
}

func TestCompleteGivesUpAfterRepeatedCollisions(t *testing.T) {
	env := newCheckoutEnv(nil)
	owner := GuestIdentity("sess-1")
	checkout := env.createCheckout(t, owner, [2]int64{1000, 1})

	env.orders.forceDuplicates = maxOrderNumberAttempts

	_, err := env.service.Complete(context.Background(), checkout.ID, owner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gave up")

	stored, err := env.checkouts.Get(context.Background(), checkout.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutStatusActive, stored.Status)
}

func TestLineItemsSnapshotCurrentProductPrice(t *testing.T) {
	env := newCheckoutEnv(nil)
	owner := GuestIdentity("sess-1")
	addressID, _ := env.seedCart(owner)

	productID := env.products.add(models.Product{Name: "Lamp", SKU: "LMP-1", Price: 2500, IsActive: true})
	// Cart line carries a stale price from when it was added.
	itemID := env.cartItems.add(models.CartItem{
		SessionID: owner.SessionID,
		ProductID: productID,
		Quantity:  2,
		UnitPrice: 1800,
	})

	checkout, err := env.service.Create(context.Background(), CreateCheckoutInput{
		Owner:             owner,
		ShippingAddressID: addressID,
		BillingAddressID:  addressID,
		CartItemIDs:       []uuid.UUID{itemID},
	})
	require.NoError(t, err)

	order, err := env.service.Complete(context.Background(), checkout.ID, owner)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(2500), order.Items[0].UnitPrice)
	assert.Equal(t, int64(5000), order.Subtotal)
	assert.Equal(t, "Lamp", order.Items[0].ProductName)
	assert.Equal(t, "LMP-1", order.Items[0].SKU)
}

func TestCompleteAppliesDiscountToTotal(t *testing.T) {
	env := newCheckoutEnv(RatePricing{ShippingFee: 300})
	owner := GuestIdentity("sess-1")
	checkout := env.createCheckout(t, owner, [2]int64{4000, 1})

	discount := int64(1000)
	_, err := env.service.Validate(context.Background(), checkout.ID, owner, ValidateCheckoutInput{Discount: &discount})
	require.NoError(t, err)

	order, err := env.service.Complete(context.Background(), checkout.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), order.Discount)
	assert.Equal(t, int64(4000+300-1000), order.Total)
}

func TestGenerateOrderNumber(t *testing.T) {
	assembler := NewOrderAssembler(nil, nil, nil, nil, RatePricing{}, nil, "VLR", "USD")

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		number, err := assembler.GenerateOrderNumber()
		require.NoError(t, err)
		assert.Regexp(t, orderNumberPattern, number)
		seen[number] = true
	}
	assert.Greater(t, len(seen), 1, "numbers vary across calls")
}

func TestRatePricingQuote(t *testing.T) {
	pricing := RatePricing{TaxRateBps: 800, ShippingFee: 500, FreeShippingOver: 10000}

	totals := pricing.Quote(5000, 0)
	assert.Equal(t, int64(400), totals.Tax)
	assert.Equal(t, int64(500), totals.Shipping)
	assert.Equal(t, int64(5900), totals.Total)

	totals = pricing.Quote(12000, 0)
	assert.Equal(t, int64(0), totals.Shipping, "free shipping over threshold")

	totals = pricing.Quote(5000, 9000)
	assert.Equal(t, int64(5000), totals.Discount, "discount clamped to subtotal")
	assert.Equal(t, totals.Subtotal+totals.Tax+totals.Shipping-totals.Discount, totals.Total)
}
