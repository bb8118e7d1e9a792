package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/example/velora/internal/models"
)

// In-memory store fakes backing the service tests. The order store fake
// mirrors the production contract: inserting the order and flipping the
// checkout status is a single atomic step guarded by one lock.

type fakeCheckoutStore struct {
	mu        sync.Mutex
	checkouts map[uuid.UUID]*models.Checkout
}

func newFakeCheckoutStore() *fakeCheckoutStore {
	return &fakeCheckoutStore{checkouts: map[uuid.UUID]*models.Checkout{}}
}

func (f *fakeCheckoutStore) Create(_ context.Context, checkout *models.Checkout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if checkout.ID == uuid.Nil {
		checkout.ID = uuid.New()
	}
	copied := *checkout
	f.checkouts[checkout.ID] = &copied
	return nil
}

func (f *fakeCheckoutStore) Get(_ context.Context, id uuid.UUID) (*models.Checkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	checkout, ok := f.checkouts[id]
	if !ok {
		return nil, ErrRecordMissing
	}
	copied := *checkout
	return &copied, nil
}

func (f *fakeCheckoutStore) Save(_ context.Context, checkout *models.Checkout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.checkouts[checkout.ID]; !ok {
		return ErrRecordMissing
	}
	copied := *checkout
	f.checkouts[checkout.ID] = &copied
	return nil
}

func (f *fakeCheckoutStore) MarkAbandoned(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	checkout, ok := f.checkouts[id]
	if !ok || checkout.Status != models.CheckoutStatusActive {
		return ErrCheckoutNotActive
	}
	checkout.Status = models.CheckoutStatusAbandoned
	return nil
}

func (f *fakeCheckoutStore) CartItemAttached(_ context.Context, cartItemID, excludeCheckoutID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, checkout := range f.checkouts {
		if checkout.ID == excludeCheckoutID || checkout.Status != models.CheckoutStatusActive {
			continue
		}
		for _, raw := range checkout.CartItemIDs {
			if raw == cartItemID.String() {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeOrderStore struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*models.Order
	byNumber  map[string]uuid.UUID
	checkouts *fakeCheckoutStore

	// forceDuplicates makes the next N inserts fail as number collisions.
	forceDuplicates int
}

func newFakeOrderStore(checkouts *fakeCheckoutStore) *fakeOrderStore {
	return &fakeOrderStore{
		orders:    map[uuid.UUID]*models.Order{},
		byNumber:  map[string]uuid.UUID{},
		checkouts: checkouts,
	}
}

func (f *fakeOrderStore) CreateForCheckout(_ context.Context, order *models.Order, checkoutID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkouts.mu.Lock()
	defer f.checkouts.mu.Unlock()

	checkout, ok := f.checkouts.checkouts[checkoutID]
	if !ok || checkout.Status != models.CheckoutStatusActive {
		return ErrCheckoutNotActive
	}

	if f.forceDuplicates > 0 {
		f.forceDuplicates--
		return ErrDuplicateOrderNumber
	}
	if _, taken := f.byNumber[order.OrderNumber]; taken {
		return ErrDuplicateOrderNumber
	}

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	copied := *order
	f.orders[order.ID] = &copied
	f.byNumber[order.OrderNumber] = order.ID
	checkout.Status = models.CheckoutStatusCompleted
	return nil
}

func (f *fakeOrderStore) add(order models.Order) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	f.orders[order.ID] = &order
	f.byNumber[order.OrderNumber] = order.ID
	return order.ID
}

func (f *fakeOrderStore) Get(_ context.Context, id uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, ErrRecordMissing
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) TransitionStatus(_ context.Context, order *models.Order, from models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.orders[order.ID]
	if !ok || stored.Status != from {
		return ErrOrderStateChanged
	}
	stored.Status = order.Status
	stored.PaymentStatus = order.PaymentStatus
	stored.CancelReason = order.CancelReason
	return nil
}

// ListByOwner mirrors the production WHERE branches rather than the model's
// OwnedBy helper, so scoping regressions show up here too.
func (f *fakeOrderStore) ListByOwner(_ context.Context, owner Identity, limit, offset int) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.Order
	for _, order := range f.orders {
		switch {
		case owner.UserID != nil:
			if order.UserID != nil && *order.UserID == *owner.UserID {
				matched = append(matched, *order)
			}
		default:
			if order.UserID == nil && order.SessionID == owner.SessionID {
				matched = append(matched, *order)
			}
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

type fakeAddressStore struct {
	mu        sync.Mutex
	addresses map[uuid.UUID]*models.Address
}

func newFakeAddressStore() *fakeAddressStore {
	return &fakeAddressStore{addresses: map[uuid.UUID]*models.Address{}}
}

func (f *fakeAddressStore) add(address models.Address) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	f.addresses[address.ID] = &address
	return address.ID
}

func (f *fakeAddressStore) Get(_ context.Context, id uuid.UUID) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	address, ok := f.addresses[id]
	if !ok {
		return nil, ErrRecordMissing
	}
	copied := *address
	return &copied, nil
}

type fakeCartItemStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.CartItem
}

func newFakeCartItemStore() *fakeCartItemStore {
	return &fakeCartItemStore{items: map[uuid.UUID]*models.CartItem{}}
}

func (f *fakeCartItemStore) add(item models.CartItem) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.items[item.ID] = &item
	return item.ID
}

func (f *fakeCartItemStore) List(_ context.Context, ids []uuid.UUID) ([]models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CartItem
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeCartItemStore) Delete(_ context.Context, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.items, id)
	}
	return nil
}

type fakeProductStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[uuid.UUID]*models.Product{}}
}

func (f *fakeProductStore) add(product models.Product) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.products[product.ID] = &product
	return product.ID
}

func (f *fakeProductStore) Get(_ context.Context, id uuid.UUID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, ErrRecordMissing
	}
	copied := *product
	return &copied, nil
}

type fakePaymentStore struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*models.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[uuid.UUID]*models.Payment{}}
}

func (f *fakePaymentStore) GetByOrder(_ context.Context, orderID uuid.UUID) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.OrderID == orderID {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, ErrRecordMissing
}

func (f *fakePaymentStore) Create(_ context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentStore) Save(_ context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.payments[payment.ID]; !ok {
		return ErrRecordMissing
	}
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentStore) HasConfirmed(_ context.Context, orderID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.OrderID != orderID {
			continue
		}
		if payment.Status == models.PaymentStatusConfirmed || payment.Status == models.PaymentStatusPaid {
			return true, nil
		}
	}
	return false, nil
}

type fakeCategoryStore struct {
	mu         sync.Mutex
	categories map[uuid.UUID]*models.Category
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{categories: map[uuid.UUID]*models.Category{}}
}

func (f *fakeCategoryStore) add(category models.Category) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	f.categories[category.ID] = &category
	return category.ID
}

func (f *fakeCategoryStore) Get(_ context.Context, id uuid.UUID) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	category, ok := f.categories[id]
	if !ok {
		return nil, ErrRecordMissing
	}
	copied := *category
	return &copied, nil
}

func (f *fakeCategoryStore) ListPublished(_ context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Category
	for _, category := range f.categories {
		if category.Published {
			out = append(out, *category)
		}
	}
	return out, nil
}

func (f *fakeCategoryStore) ListByParent(_ context.Context, parentID *uuid.UUID) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Category
	for _, category := range f.categories {
		switch {
		case parentID == nil && category.ParentID == nil:
			out = append(out, *category)
		case parentID != nil && category.ParentID != nil && *category.ParentID == *parentID:
			out = append(out, *category)
		}
	}
	return out, nil
}

func (f *fakeCategoryStore) Create(_ context.Context, category *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCategoryStore) Save(_ context.Context, category *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[category.ID]; !ok {
		return ErrRecordMissing
	}
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}
