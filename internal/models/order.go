package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// IsValid reports whether the status is a known value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
		OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions leave this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

func (s OrderStatus) String() string {
	return string(s)
}

// PaymentStatus is the payment state tracked alongside the order status.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// Order is the immutable record of a completed checkout. Monetary fields are
// minor units; total = subtotal + tax + shipping - discount. Only status,
// payment status and administrative fields change after creation.
type Order struct {
	BaseModel
	OrderNumber     string          `gorm:"uniqueIndex" json:"order_number"`
	UserID          *uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	SessionID       string          `gorm:"index" json:"session_id,omitempty"`
	CheckoutID      uuid.UUID       `gorm:"type:uuid;index" json:"checkout_id"`
	Status          OrderStatus     `gorm:"index" json:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	Subtotal        int64           `json:"subtotal"`
	Tax             int64           `json:"tax"`
	Shipping        int64           `json:"shipping"`
	Discount        int64           `json:"discount"`
	Total           int64           `json:"total"`
	Currency        string          `json:"currency"`
	ShippingMethod  string          `json:"shipping_method"`
	ShippingAddress AddressSnapshot `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress  AddressSnapshot `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	PlacedAt        time.Time       `json:"placed_at"`
	Items           []OrderLineItem `json:"items,omitempty"`
}

// OwnedBy reports whether the order belongs to the given user/session pair.
func (o *Order) OwnedBy(userID *uuid.UUID, sessionID string) bool {
	if o.UserID != nil {
		return userID != nil && *o.UserID == *userID
	}
	return o.SessionID != "" && o.SessionID == sessionID
}

// OrderLineItem is a product snapshot frozen at order completion. Later
// product edits never alter historical orders.
type OrderLineItem struct {
	BaseModel
	OrderID     uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName string     `json:"product_name"`
	SKU         string     `json:"sku"`
	Quantity    int        `json:"quantity"`
	UnitPrice   int64      `json:"unit_price"`
	LineTotal   int64      `json:"line_total"`
	Discount    int64      `json:"discount"`
	Tax         int64      `json:"tax"`
}
