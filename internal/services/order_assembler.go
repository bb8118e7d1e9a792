package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/example/velora/internal/models"
)

// orderNumberAlphabet excludes ambiguous characters (0/O, 1/I).
const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// maxOrderNumberAttempts bounds the retry loop on order-number collisions.
// The unique index on orders.order_number is the real guarantee; the loop
// only rides out the rare collision.
const maxOrderNumberAttempts = 5

// OrderAssembler converts a validated active checkout into an immutable
// order: line items are re-snapshotted from the product catalog at completion
// time, totals are computed by the pricing engine, and the order insert plus
// the checkout active→completed flip happen as one atomic store operation.
type OrderAssembler struct {
	orders    OrderStore
	cartItems CartItemStore
	products  ProductStore
	addresses AddressStore
	pricing   PricingEngine
	notifier  Notifier

	numberPrefix string
	currency     string
}

// NewOrderAssembler constructs OrderAssembler.
func NewOrderAssembler(orders OrderStore, cartItems CartItemStore, products ProductStore, addresses AddressStore, pricing PricingEngine, notifier Notifier, numberPrefix, currency string) *OrderAssembler {
	return &OrderAssembler{
		orders:       orders,
		cartItems:    cartItems,
		products:     products,
		addresses:    addresses,
		pricing:      pricing,
		notifier:     notifier,
		numberPrefix: numberPrefix,
		currency:     currency,
	}
}

// Complete assembles and persists the order for an active checkout. The
// caller has already verified existence, ownership and active status; the
// store-level compare-and-swap still makes completion exclusive under
// concurrent requests.
func (a *OrderAssembler) Complete(ctx context.Context, checkout *models.Checkout) (*models.Order, error) {
	itemIDs, err := parseCartItemIDs(checkout.CartItemIDs)
	if err != nil {
		return nil, err
	}
	if len(itemIDs) == 0 {
		return nil, E(KindEmptyCart, "checkout has no cart items")
	}

	lineItems, subtotal, err := a.snapshotLineItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	shippingAddr, err := a.addressSnapshot(ctx, checkout.ShippingAddressID)
	if err != nil {
		return nil, err
	}
	billingAddr, err := a.addressSnapshot(ctx, checkout.BillingAddressID)
	if err != nil {
		return nil, err
	}

	totals := a.pricing.Quote(subtotal, checkout.Discount)

	order := &models.Order{
		UserID:          checkout.UserID,
		SessionID:       checkout.SessionID,
		CheckoutID:      checkout.ID,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Discount:        totals.Discount,
		Total:           totals.Total,
		Currency:        a.currency,
		ShippingMethod:  checkout.ShippingMethod,
		ShippingAddress: shippingAddr,
		BillingAddress:  billingAddr,
		PlacedAt:        time.Now(),
		Items:           lineItems,
	}

	if err := a.persistWithFreshNumber(ctx, order, checkout.ID); err != nil {
		return nil, err
	}
	checkout.Status = models.CheckoutStatusCompleted

	if err := a.cartItems.Delete(ctx, itemIDs); err != nil {
		log.Printf("[Order] failed to clear cart items for order %s: %v", order.OrderNumber, err)
	}

	if a.notifier != nil {
		go a.notifier.NotifyOrderCreated(order)
	}

	return order, nil
}

func (a *OrderAssembler) persistWithFreshNumber(ctx context.Context, order *models.Order, checkoutID uuid.UUID) error {
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		number, err := a.GenerateOrderNumber()
		if err != nil {
			return err
		}
		order.OrderNumber = number

		err = a.orders.CreateForCheckout(ctx, order, checkoutID)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrCheckoutNotActive) {
			return E(KindInvalidState, "checkout %s is no longer active", checkoutID)
		}
		if errors.Is(err, ErrDuplicateOrderNumber) {
			log.Printf("[Order] order number %s already taken, retrying", number)
			continue
		}
		return err
	}
	return fmt.Errorf("gave up generating a unique order number after %d attempts", maxOrderNumberAttempts)
}

func (a *OrderAssembler) snapshotLineItems(ctx context.Context, ids []uuid.UUID) ([]models.OrderLineItem, int64, error) {
	items, err := a.cartItems.List(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	found := make(map[uuid.UUID]*models.CartItem, len(items))
	for i := range items {
		found[items[i].ID] = &items[i]
	}

	lineItems := make([]models.OrderLineItem, 0, len(ids))
	var subtotal int64
	for _, id := range ids {
		item, ok := found[id]
		if !ok {
			return nil, 0, E(KindCartItemInvalid, "cart item %s no longer exists", id)
		}
		if item.Quantity <= 0 {
			return nil, 0, &Error{
				Kind:    KindValidationFailed,
				Message: "invalid cart item",
				Details: []string{fmt.Sprintf("cart item %s has non-positive quantity %d", id, item.Quantity)},
			}
		}

		product, err := a.products.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, ErrRecordMissing) {
				return nil, 0, E(KindCartItemInvalid, "product %s for cart item %s no longer exists", item.ProductID, id)
			}
			return nil, 0, err
		}

		productID := product.ID
		lineTotal := product.Price * int64(item.Quantity)
		lineItems = append(lineItems, models.OrderLineItem{
			ProductID:   &productID,
			ProductName: product.Name,
			SKU:         product.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			LineTotal:   lineTotal,
		})
		subtotal += lineTotal
	}

	return lineItems, subtotal, nil
}

func (a *OrderAssembler) addressSnapshot(ctx context.Context, id uuid.UUID) (models.AddressSnapshot, error) {
	address, err := a.addresses.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordMissing) {
			return models.AddressSnapshot{}, E(KindAddressNotFound, "address %s not found", id)
		}
		return models.AddressSnapshot{}, err
	}
	return address.Snapshot(), nil
}

// GenerateOrderNumber produces PREFIX + YYMMDD + a 4-character random suffix.
// Uniqueness is enforced by the order store, not here.
func (a *OrderAssembler) GenerateOrderNumber() (string, error) {
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(orderNumberAlphabet))))
		if err != nil {
			return "", err
		}
		suffix[i] = orderNumberAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s%s%s", a.numberPrefix, time.Now().Format("060102"), suffix), nil
}

func parseCartItemIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, E(KindCartItemInvalid, "malformed cart item reference %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
