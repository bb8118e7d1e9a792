package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/example/velora/internal/models"
)

// Store sentinel errors. The gorm implementations in internal/storage map
// driver errors onto these so services never depend on the database layer.
var (
	// ErrRecordMissing is returned by Get-style lookups when no row exists.
	ErrRecordMissing = errors.New("record not found")

	// ErrDuplicateOrderNumber is returned by OrderStore.CreateForCheckout when
	// the order number collides with an existing order. The unique index on
	// orders.order_number is the authority; callers retry with a fresh number.
	ErrDuplicateOrderNumber = errors.New("duplicate order number")

	// ErrCheckoutNotActive is returned by OrderStore.CreateForCheckout and
	// CheckoutStore.MarkAbandoned when the compare-and-swap on checkout status
	// finds the checkout no longer active.
	ErrCheckoutNotActive = errors.New("checkout is not active")

	// ErrOrderStateChanged is returned by OrderStore.TransitionStatus when the
	// order's status no longer matches the one the caller read.
	ErrOrderStateChanged = errors.New("order status changed concurrently")
)

// CheckoutStore persists checkout sessions.
type CheckoutStore interface {
	Create(ctx context.Context, checkout *models.Checkout) error
	Get(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
	Save(ctx context.Context, checkout *models.Checkout) error
	// MarkAbandoned flips the checkout from active to abandoned, returning
	// ErrCheckoutNotActive if the checkout left active in the meantime.
	MarkAbandoned(ctx context.Context, id uuid.UUID) error
	// CartItemAttached reports whether another active checkout references the
	// cart item.
	CartItemAttached(ctx context.Context, cartItemID, excludeCheckoutID uuid.UUID) (bool, error)
}

// OrderStore persists orders.
type OrderStore interface {
	// CreateForCheckout inserts the order and flips the originating checkout
	// from active to completed as one atomic unit. If the checkout is no
	// longer active it returns ErrCheckoutNotActive and persists nothing; if
	// the order number is taken it returns ErrDuplicateOrderNumber and
	// persists nothing.
	CreateForCheckout(ctx context.Context, order *models.Order, checkoutID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// TransitionStatus persists the order's status, payment status and cancel
	// reason only while the stored status still equals from, returning
	// ErrOrderStateChanged otherwise.
	TransitionStatus(ctx context.Context, order *models.Order, from models.OrderStatus) error
	ListByOwner(ctx context.Context, owner Identity, limit, offset int) ([]models.Order, int64, error)
}

// AddressStore resolves shipping/billing addresses.
type AddressStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Address, error)
}

// CartItemStore resolves cart items by ID. Missing IDs are simply absent from
// the result.
type CartItemStore interface {
	List(ctx context.Context, ids []uuid.UUID) ([]models.CartItem, error)
	Delete(ctx context.Context, ids []uuid.UUID) error
}

// ProductStore resolves products for line-item snapshotting.
type ProductStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// PaymentStore persists payment records for orders.
type PaymentStore interface {
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Save(ctx context.Context, payment *models.Payment) error
	// HasConfirmed reports whether the order has a confirmed or captured
	// payment on file.
	HasConfirmed(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// CategoryStore persists the category taxonomy.
type CategoryStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListPublished(ctx context.Context) ([]models.Category, error)
	ListByParent(ctx context.Context, parentID *uuid.UUID) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Save(ctx context.Context, category *models.Category) error
}

// Notifier receives fire-and-forget order notifications. Implementations must
// never fail the calling operation.
type Notifier interface {
	NotifyOrderCreated(order *models.Order)
	NotifyOrderStatus(order *models.Order, previous models.OrderStatus)
}
