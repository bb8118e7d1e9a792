package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CheckoutStatus is the lifecycle state of a checkout session.
type CheckoutStatus string

const (
	CheckoutStatusActive    CheckoutStatus = "active"
	CheckoutStatusCompleted CheckoutStatus = "completed"
	CheckoutStatusAbandoned CheckoutStatus = "abandoned"
)

// IsTerminal reports whether no further transitions are allowed.
func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted || s == CheckoutStatusAbandoned
}

func (s CheckoutStatus) String() string {
	return string(s)
}

// Checkout binds a cart to addresses and a shipping method prior to order
// creation. Exactly one of UserID/SessionID is set; cart items are held by
// reference and only consumed when the checkout completes.
type Checkout struct {
	BaseModel
	UserID            *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	SessionID         string         `gorm:"index" json:"session_id,omitempty"`
	ShippingAddressID uuid.UUID      `gorm:"type:uuid" json:"shipping_address_id"`
	BillingAddressID  uuid.UUID      `gorm:"type:uuid" json:"billing_address_id"`
	ShippingMethod    string         `json:"shipping_method"`
	Discount          int64          `json:"discount"`
	Status            CheckoutStatus `gorm:"index" json:"status"`
	CartItemIDs       pq.StringArray `gorm:"type:text[]" json:"cart_item_ids"`
}

// OwnedBy reports whether the checkout belongs to the given user/session pair.
func (c *Checkout) OwnedBy(userID *uuid.UUID, sessionID string) bool {
	if c.UserID != nil {
		return userID != nil && *c.UserID == *userID
	}
	return c.SessionID != "" && c.SessionID == sessionID
}
