package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/example/velora/internal/models"
)

// CheckoutService owns the checkout session lifecycle: creation, validation,
// completion and abandonment. Ownership mismatches are reported as not-found
// so callers cannot probe for other parties' checkouts.
type CheckoutService struct {
	checkouts CheckoutStore
	addresses AddressStore
	cartItems CartItemStore
	assembler *OrderAssembler
}

// NewCheckoutService constructs CheckoutService.
func NewCheckoutService(checkouts CheckoutStore, addresses AddressStore, cartItems CartItemStore, assembler *OrderAssembler) *CheckoutService {
	return &CheckoutService{
		checkouts: checkouts,
		addresses: addresses,
		cartItems: cartItems,
		assembler: assembler,
	}
}

// CreateCheckoutInput carries everything needed to open a checkout session.
type CreateCheckoutInput struct {
	Owner             Identity
	ShippingAddressID uuid.UUID
	BillingAddressID  uuid.UUID
	ShippingMethod    string
	CartItemIDs       []uuid.UUID
}

// Create opens a new active checkout after validating ownership, addresses
// and cart items. Cart items are referenced, not consumed.
func (s *CheckoutService) Create(ctx context.Context, input CreateCheckoutInput) (*models.Checkout, error) {
	if !input.Owner.Exclusive() {
		return nil, E(KindAmbiguousOwnership, "exactly one of user or session identity is required")
	}
	if len(input.CartItemIDs) == 0 {
		return nil, E(KindEmptyCart, "checkout requires at least one cart item")
	}

	if _, err := s.resolveAddress(ctx, input.ShippingAddressID, input.Owner); err != nil {
		return nil, err
	}
	if _, err := s.resolveAddress(ctx, input.BillingAddressID, input.Owner); err != nil {
		return nil, err
	}

	if err := s.verifyCartItems(ctx, input.CartItemIDs, input.Owner, uuid.Nil); err != nil {
		return nil, err
	}

	checkout := &models.Checkout{
		UserID:            input.Owner.UserID,
		SessionID:         input.Owner.SessionID,
		ShippingAddressID: input.ShippingAddressID,
		BillingAddressID:  input.BillingAddressID,
		ShippingMethod:    input.ShippingMethod,
		Status:            models.CheckoutStatusActive,
		CartItemIDs:       cartItemIDStrings(input.CartItemIDs),
	}

	if err := s.checkouts.Create(ctx, checkout); err != nil {
		return nil, err
	}

	return checkout, nil
}

// ValidateCheckoutInput carries optional updates applied by Validate. Nil
// fields are left untouched.
type ValidateCheckoutInput struct {
	ShippingAddressID *uuid.UUID
	BillingAddressID  *uuid.UUID
	ShippingMethod    *string
	Discount          *int64
	CartItemIDs       []uuid.UUID
}

// Validate re-checks an active checkout and applies any updates.
func (s *CheckoutService) Validate(ctx context.Context, id uuid.UUID, owner Identity, updates ValidateCheckoutInput) (*models.Checkout, error) {
	checkout, err := s.getActive(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	if updates.ShippingAddressID != nil {
		if _, err := s.resolveAddress(ctx, *updates.ShippingAddressID, owner); err != nil {
			return nil, err
		}
		checkout.ShippingAddressID = *updates.ShippingAddressID
	}
	if updates.BillingAddressID != nil {
		if _, err := s.resolveAddress(ctx, *updates.BillingAddressID, owner); err != nil {
			return nil, err
		}
		checkout.BillingAddressID = *updates.BillingAddressID
	}
	if updates.ShippingMethod != nil {
		checkout.ShippingMethod = *updates.ShippingMethod
	}
	if updates.Discount != nil {
		if *updates.Discount < 0 {
			return nil, &Error{
				Kind:    KindValidationFailed,
				Message: "invalid checkout update",
				Details: []string{"discount must not be negative"},
			}
		}
		checkout.Discount = *updates.Discount
	}
	if updates.CartItemIDs != nil {
		if len(updates.CartItemIDs) == 0 {
			return nil, E(KindEmptyCart, "checkout requires at least one cart item")
		}
		if err := s.verifyCartItems(ctx, updates.CartItemIDs, owner, checkout.ID); err != nil {
			return nil, err
		}
		checkout.CartItemIDs = cartItemIDStrings(updates.CartItemIDs)
	}

	if err := s.checkouts.Save(ctx, checkout); err != nil {
		return nil, err
	}

	return checkout, nil
}

// Complete turns an active checkout into an order via the assembler. On any
// assembler failure the checkout stays active; the active→completed flip
// happens atomically with order creation inside the order store.
func (s *CheckoutService) Complete(ctx context.Context, id uuid.UUID, owner Identity) (*models.Order, error) {
	checkout, err := s.getActive(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	return s.assembler.Complete(ctx, checkout)
}

// Abandon marks an active checkout abandoned. Terminal checkouts are
// rejected with invalid_state.
func (s *CheckoutService) Abandon(ctx context.Context, id uuid.UUID, owner Identity) (*models.Checkout, error) {
	checkout, err := s.getActive(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	if err := s.checkouts.MarkAbandoned(ctx, checkout.ID); err != nil {
		if errors.Is(err, ErrCheckoutNotActive) {
			return nil, E(KindInvalidState, "checkout is no longer active")
		}
		return nil, err
	}
	checkout.Status = models.CheckoutStatusAbandoned

	return checkout, nil
}

// Get returns a checkout to its owner.
func (s *CheckoutService) Get(ctx context.Context, id uuid.UUID, owner Identity) (*models.Checkout, error) {
	return s.getOwned(ctx, id, owner)
}

func (s *CheckoutService) getOwned(ctx context.Context, id uuid.UUID, owner Identity) (*models.Checkout, error) {
	checkout, err := s.checkouts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordMissing) {
			return nil, E(KindNotFound, "checkout not found")
		}
		return nil, err
	}
	if !checkout.OwnedBy(owner.UserID, owner.SessionID) {
		return nil, E(KindNotFound, "checkout not found")
	}
	return checkout, nil
}

func (s *CheckoutService) getActive(ctx context.Context, id uuid.UUID, owner Identity) (*models.Checkout, error) {
	checkout, err := s.getOwned(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if checkout.Status != models.CheckoutStatusActive {
		return nil, E(KindInvalidState, "checkout is %s, expected active", checkout.Status)
	}
	return checkout, nil
}

func (s *CheckoutService) resolveAddress(ctx context.Context, id uuid.UUID, owner Identity) (*models.Address, error) {
	address, err := s.addresses.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordMissing) {
			return nil, E(KindAddressNotFound, "address %s not found", id)
		}
		return nil, err
	}
	if !address.OwnedBy(owner.UserID, owner.SessionID) {
		return nil, E(KindAddressMismatch, "address %s belongs to a different owner", id)
	}
	return address, nil
}

func (s *CheckoutService) verifyCartItems(ctx context.Context, ids []uuid.UUID, owner Identity, excludeCheckoutID uuid.UUID) error {
	items, err := s.cartItems.List(ctx, ids)
	if err != nil {
		return err
	}

	found := make(map[uuid.UUID]*models.CartItem, len(items))
	for i := range items {
		found[items[i].ID] = &items[i]
	}

	for _, id := range ids {
		item, ok := found[id]
		if !ok {
			return E(KindCartItemInvalid, "cart item %s not found", id)
		}
		if !cartItemOwnedBy(item, owner) {
			return E(KindCartItemInvalid, "cart item %s belongs to a different owner", id)
		}
		attached, err := s.checkouts.CartItemAttached(ctx, id, excludeCheckoutID)
		if err != nil {
			return err
		}
		if attached {
			return E(KindCartItemInvalid, "cart item %s is attached to another active checkout", id)
		}
	}

	return nil
}

func cartItemOwnedBy(item *models.CartItem, owner Identity) bool {
	if item.UserID != nil {
		return owner.UserID != nil && *item.UserID == *owner.UserID
	}
	return item.SessionID != "" && item.SessionID == owner.SessionID
}

func cartItemIDStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
