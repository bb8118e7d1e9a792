package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment records a payment attempt against an order. Refunds require a
// confirmed payment on file.
type Payment struct {
	BaseModel
	OrderID     uuid.UUID     `gorm:"type:uuid;index" json:"order_id"`
	Provider    string        `json:"provider"`
	Status      PaymentStatus `json:"status"`
	Amount      int64         `json:"amount"`
	Currency    string        `json:"currency"`
	ConfirmedAt *time.Time    `json:"confirmed_at"`
}
