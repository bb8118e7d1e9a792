package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/services"
)

// OrderStore is the gorm implementation of services.OrderStore.
type OrderStore struct {
	db *gorm.DB
}

// NewOrderStore constructs OrderStore.
func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// CreateForCheckout inserts the order and flips the checkout from active to
// completed in one transaction. The compare-and-swap on status makes
// completion exclusive: a losing concurrent request sees
// services.ErrCheckoutNotActive. Order-number collisions surface as
// services.ErrDuplicateOrderNumber via the unique index.
func (s *OrderStore) CreateForCheckout(ctx context.Context, order *models.Order, checkoutID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Checkout{}).
			Where("id = ? AND status = ?", checkoutID, models.CheckoutStatusActive).
			Update("status", models.CheckoutStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return services.ErrCheckoutNotActive
		}

		if err := tx.Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return services.ErrDuplicateOrderNumber
			}
			return err
		}
		return nil
	})
}

func (s *OrderStore) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrRecordMissing
		}
		return nil, err
	}
	return &order, nil
}

// TransitionStatus writes the order's lifecycle fields guarded by the status
// the caller read. A concurrent transition makes RowsAffected zero and the
// write is dropped.
func (s *OrderStore) TransitionStatus(ctx context.Context, order *models.Order, from models.OrderStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, from).
		Updates(map[string]interface{}{
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"cancel_reason":  order.CancelReason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrOrderStateChanged
	}
	return nil
}

func (s *OrderStore) ListByOwner(ctx context.Context, owner services.Identity, limit, offset int) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if owner.UserID != nil {
		query = query.Where("user_id = ?", *owner.UserID)
	} else {
		// user-owned rows persist session_id = '', so the guest branch must
		// also pin user_id to NULL.
		query = query.Where("user_id IS NULL AND session_id = ?", owner.SessionID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}
