package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/services"
)

// CartItemStore is the gorm implementation of services.CartItemStore.
type CartItemStore struct {
	db *gorm.DB
}

// NewCartItemStore constructs CartItemStore.
func NewCartItemStore(db *gorm.DB) *CartItemStore {
	return &CartItemStore{db: db}
}

func (s *CartItemStore) List(ctx context.Context, ids []uuid.UUID) ([]models.CartItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.CartItem
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *CartItemStore) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.CartItem{}).Error
}

// AddressStore is the gorm implementation of services.AddressStore.
type AddressStore struct {
	db *gorm.DB
}

// NewAddressStore constructs AddressStore.
func NewAddressStore(db *gorm.DB) *AddressStore {
	return &AddressStore{db: db}
}

func (s *AddressStore) Get(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := s.db.WithContext(ctx).First(&address, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrRecordMissing
		}
		return nil, err
	}
	return &address, nil
}
