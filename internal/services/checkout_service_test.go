package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/velora/internal/models"
)

type checkoutEnv struct {
	checkouts *fakeCheckoutStore
	orders    *fakeOrderStore
	addresses *fakeAddressStore
	cartItems *fakeCartItemStore
	products  *fakeProductStore
	assembler *OrderAssembler
	service   *CheckoutService
}

func newCheckoutEnv(pricing PricingEngine) *checkoutEnv {
	checkouts := newFakeCheckoutStore()
	orders := newFakeOrderStore(checkouts)
	addresses := newFakeAddressStore()
	cartItems := newFakeCartItemStore()
	products := newFakeProductStore()

	if pricing == nil {
		pricing = RatePricing{}
	}
	assembler := NewOrderAssembler(orders, cartItems, products, addresses, pricing, nil, "VLR", "USD")

	return &checkoutEnv{
		checkouts: checkouts,
		orders:    orders,
		addresses: addresses,
		cartItems: cartItems,
		products:  products,
		assembler: assembler,
		service:   NewCheckoutService(checkouts, addresses, cartItems, assembler),
	}
}

// seedCart creates an address and cart items for the owner and returns the
// address ID plus cart item IDs. Each entry is (unit price, quantity).
func (e *checkoutEnv) seedCart(owner Identity, entries ...[2]int64) (uuid.UUID, []uuid.UUID) {
	addressID := e.addresses.add(models.Address{
		UserID:      owner.UserID,
		SessionID:   owner.SessionID,
		Recipient:   "Aziz Karimov",
		AddressLine: "12 Amir Temur Avenue",
		City:        "Tashkent",
		Country:     "UZ",
	})

	var itemIDs []uuid.UUID
	for _, entry := range entries {
		productID := e.products.add(models.Product{
			Name:     "Item",
			SKU:      "SKU-" + uuid.NewString()[:8],
			Price:    entry[0],
			IsActive: true,
		})
		itemIDs = append(itemIDs, e.cartItems.add(models.CartItem{
			UserID:    owner.UserID,
			SessionID: owner.SessionID,
			ProductID: productID,
			Quantity:  int(entry[1]),
			UnitPrice: entry[0],
		}))
	}
	return addressID, itemIDs
}

func (e *checkoutEnv) createCheckout(t *testing.T, owner Identity, entries ...[2]int64) *models.Checkout {
	t.Helper()
	addressID, itemIDs := e.seedCart(owner, entries...)
	checkout, err := e.service.Create(context.Background(), CreateCheckoutInput{
		Owner:             owner,
		ShippingAddressID: addressID,
		BillingAddressID:  addressID,
		ShippingMethod:    "standard",
		CartItemIDs:       itemIDs,
	})
	require.NoError(t, err)
	return checkout
}

func TestCreateCheckoutRequiresExclusiveIdentity(t *testing.T) {
	env := newCheckoutEnv(nil)
	userID := uuid.New()

	_, err := env.service.Create(context.Background(), CreateCheckoutInput{
		Owner:       Identity{UserID: &userID, SessionID: "sess-1"},
		CartItemIDs: []uuid.UUID{uuid.New()},
	})
	assert.True(t, IsKind(err, KindAmbiguousOwnership))

	_, err = env.service.Create(context.Background(), CreateCheckoutInput{
		Owner:       Identity{},
		CartItemIDs: []uuid.UUID{uuid.New()},
	})
	assert.True(t, IsKind(err, KindAmbiguousOwnership))
}

func TestCreateCheckoutRejectsEmptyCart(t *testing.T) {
	env := newCheckoutEnv(nil)

	_, err := env.service.Create(context.Background(), CreateCheckoutInput{
		Owner: GuestIdentity("sess-1"),
	})
	assert.True(t, IsKind(err, KindEmptyCart))
}

func TestCreateCheckoutValidatesAddresses(t *testing.T) {
	env := newCheckoutEnv(nil)
	owner := GuestIdentity("sess-1")
	_, itemIDs := env.seedCart(owner, [2]int64{1000, 1})

	_, err := env.service.Create(context.Background(), CreateCheckoutInput{
		Owner:             owner,
		ShippingAddressID: uuid.New(),
		BillingAddressID:  uuid.New(),
		CartItemIDs:       itemIDs,
	})
	assert.True(t, IsKind(err, KindAddressNotFound))

	foreignAddr := env.addresses.add(models.Address{SessionID: "someone-else", City: "Samarkand"})
	_, err = env.service.Create(context.Background(), CreateCheckoutInput{
		Owner:             owner,
		ShippingAddressID: foreignAddr,
		BillingAddressID:  foreignAddr,
		CartItemIDs:       itemIDs,
	})
	assert.True(t, IsKind(err, KindAddressMismatch))
}

func TestCreateCheckoutValidatesCartItems(t *testing.T) {
	env := newCheckoutEnv(nil)
	owner := GuestIdentity("sess-1")
	addressID, itemIDs := env.seedCart(owner, [2]int64{1000, 1})

	_, err := env.service.Create(context.Background(), CreateCheckoutInput{
		Owner:             owner,
		ShippingAddressID: addressID,
		BillingAddressID:  addressID,
		CartItemIDs:       []uuid.UUID{uuid.New()},
	})
	assert.True(t, IsKind(err, KindCartItemInvalid), "unknown cart item")

	foreignItem := env.cartItems.add(models.CartItem{SessionID: "someone-else", ProductID: uuid.New(), Quantity: 1})
	_, err = env.service.Create(context.Background(), CreateCheckoutInput{
		Owner:             owner,
		ShippingAddressID: addressID,
		BillingAddressID:  addressID,
		CartItemIDs:       []uuid.UUID{foreignItem},
	})
	assert.True(t, IsKind(err, KindCartItemInvalid), "foreign cart item")

	_, err = env.service.Create(context.Background(), CreateCheckoutInput{
		Owner:             owner,
		ShippingAddressID: addressID,
		BillingAddressID:  addressID,
		CartItemIDs:       itemIDs,
	})
	require.NoError(t, err)

	// The same cart item cannot join a second active checkout.
	_, err = env.service.Create(context.Background(), CreateCheckoutInput{
		Owner:             owner,
		ShippingAddressID: addressID,
		BillingAddressID:  addressID,
		CartItemIDs:       itemIDs,
	})
	assert.True(t, IsKind(err, KindCartItemInvalid), "cart item already attached")
}

func TestGetCheckoutHidesForeignCheckouts(t *testing.T) {
	env := newCheckoutEnv(nil)
	checkout := env.createCheckout(t, GuestIdentity("sess-1"), [2]int64{1000, 1})

	_, err := env.service.Get(context.Background(), checkout.ID, GuestIdentity("sess-2"))
	assert.True(t, IsKind(err, KindNotFound))

	otherUser := uuid.New()
	_, err = env.service.Get(context.Background(), checkout.ID, UserIdentity(otherUser))
	assert.True(t, IsKind(err, KindNotFound))

	got, err := env.service.Get(context.Background(), checkout.ID, GuestIdentity("sess-1"))
	require.NoError(t, err)
	assert.Equal(t, checkout.ID, got.ID)
}

func TestAbandonCheckout(t *testing.T) {
	env := newCheckoutEnv(nil)
	owner := GuestIdentity("sess-1")
	checkout := env.createCheckout(t, owner, [2]int64{1000, 1})

	abandoned, err := env.service.Abandon(context.Background(), checkout.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutStatusAbandoned, abandoned.Status)

	_, err = env.service.Abandon(context.Background(), checkout.ID, owner)
	assert.True(t, IsKind(err, KindInvalidState), "abandon is not repeatable")

	_, err = env.service.Complete(context.Background(), checkout.ID, owner)
	assert.True(t, IsKind(err, KindInvalidState), "abandoned checkout cannot complete")
}

// staleActiveCheckoutStore serves reads from a view where the checkout still
// looks active, emulating a completion committing between the read and the
// abandon write.
type staleActiveCheckoutStore struct {
	*fakeCheckoutStore
}

func (s *staleActiveCheckoutStore) Get(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	checkout, err := s.fakeCheckoutStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	checkout.Status = models.CheckoutStatusActive
	return checkout, nil
}

func TestAbandonLosesToConcurrentCompletion(t *testing.T) {
	env := newCheckoutEnv(nil)
	owner := GuestIdentity("sess-1")
	checkout := env.createCheckout(t, owner, [2]int64{1000, 1})

	_, err := env.service.Complete(context.Background(), checkout.ID, owner)
	require.NoError(t, err)

	stale := NewCheckoutService(&staleActiveCheckoutStore{env.checkouts}, env.addresses, env.cartItems, env.assembler)
	_, err = stale.Abandon(context.Background(), checkout.ID, owner)
	assert.True(t, IsKind(err, KindInvalidState))

	stored, err := env.checkouts.Get(context.Background(), checkout.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutStatusCompleted, stored.Status, "completed checkout is never overwritten")
}

func TestValidateCheckoutAppliesUpdates(t *testing.T) {
	env := newCheckoutEnv(nil)
	owner := GuestIdentity("sess-1")
	checkout := env.createCheckout(t, owner, [2]int64{1000, 1})

	express := "express"
	discount := int64(250)
	updated, err := env.service.Validate(context.Background(), checkout.ID, owner, ValidateCheckoutInput{
		ShippingMethod: &express,
		Discount:       &discount,
	})
	require.NoError(t, err)
	assert.Equal(t, "express", updated.ShippingMethod)
	assert.Equal(t, int64(250), updated.Discount)

	negative := int64(-1)
	_, err = env.service.Validate(context.Background(), checkout.ID, owner, ValidateCheckoutInput{Discount: &negative})
	assert.True(t, IsKind(err, KindValidationFailed))

	_, err = env.service.Validate(context.Background(), checkout.ID, owner, ValidateCheckoutInput{CartItemIDs: []uuid.UUID{}})
	assert.True(t, IsKind(err, KindEmptyCart))

	foreignItem := env.cartItems.add(models.CartItem{SessionID: "someone-else", ProductID: uuid.New(), Quantity: 1})
	_, err = env.service.Validate(context.Background(), checkout.ID, owner, ValidateCheckoutInput{CartItemIDs: []uuid.UUID{foreignItem}})
	assert.True(t, IsKind(err, KindCartItemInvalid))
}

func TestValidateCheckoutAllowsSwappingOwnCartItems(t *testing.T) {
	env := newCheckoutEnv(nil)
	owner := GuestIdentity("sess-1")
	checkout := env.createCheckout(t, owner, [2]int64{1000, 1})

	// Re-submitting the checkout's own items must not trip the attachment
	// check against itself.
	ids, err := parseCartItemIDs(checkout.CartItemIDs)
	require.NoError(t, err)
	updated, err := env.service.Validate(context.Background(), checkout.ID, owner, ValidateCheckoutInput{CartItemIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, checkout.CartItemIDs, updated.CartItemIDs)
}
