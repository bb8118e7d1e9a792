package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/services"
)

// PaymentStore is the gorm implementation of services.PaymentStore.
type PaymentStore struct {
	db *gorm.DB
}

// NewPaymentStore constructs PaymentStore.
func NewPaymentStore(db *gorm.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

func (s *PaymentStore) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at desc").
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrRecordMissing
		}
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentStore) Create(ctx context.Context, payment *models.Payment) error {
	return s.db.WithContext(ctx).Create(payment).Error
}

func (s *PaymentStore) Save(ctx context.Context, payment *models.Payment) error {
	return s.db.WithContext(ctx).Save(payment).Error
}

// HasConfirmed reports whether the order has a confirmed or captured payment.
func (s *PaymentStore) HasConfirmed(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("order_id = ? AND status IN ?", orderID,
			[]models.PaymentStatus{models.PaymentStatusConfirmed, models.PaymentStatusPaid}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
