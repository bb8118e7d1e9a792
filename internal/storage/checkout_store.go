package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/services"
)

// CheckoutStore is the gorm implementation of services.CheckoutStore.
type CheckoutStore struct {
	db *gorm.DB
}

// NewCheckoutStore constructs CheckoutStore.
func NewCheckoutStore(db *gorm.DB) *CheckoutStore {
	return &CheckoutStore{db: db}
}

func (s *CheckoutStore) Create(ctx context.Context, checkout *models.Checkout) error {
	return s.db.WithContext(ctx).Create(checkout).Error
}

func (s *CheckoutStore) Get(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	var checkout models.Checkout
	if err := s.db.WithContext(ctx).First(&checkout, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrRecordMissing
		}
		return nil, err
	}
	return &checkout, nil
}

func (s *CheckoutStore) Save(ctx context.Context, checkout *models.Checkout) error {
	return s.db.WithContext(ctx).Save(checkout).Error
}

// MarkAbandoned flips the checkout to abandoned with a compare-and-swap on
// status, so a concurrently completed checkout is never overwritten.
func (s *CheckoutStore) MarkAbandoned(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Checkout{}).
		Where("id = ? AND status = ?", id, models.CheckoutStatusActive).
		Update("status", models.CheckoutStatusAbandoned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrCheckoutNotActive
	}
	return nil
}

// CartItemAttached reports whether another active checkout references the
// cart item.
func (s *CheckoutStore) CartItemAttached(ctx context.Context, cartItemID, excludeCheckoutID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Checkout{}).
		Where("status = ? AND ? = ANY(cart_item_ids) AND id <> ?",
			models.CheckoutStatusActive, cartItemID.String(), excludeCheckoutID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
