package models

import "github.com/google/uuid"

// CartItem is a line in a user's or guest session's cart. UnitPrice is
// captured in minor units when the item is added; orders re-snapshot from
// the product catalog at completion time.
type CartItem struct {
	BaseModel
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	SessionID string     `gorm:"index" json:"session_id,omitempty"`
	ProductID uuid.UUID  `gorm:"type:uuid;index" json:"product_id"`
	Product   *Product   `json:"product,omitempty"`
	Quantity  int        `json:"quantity"`
	UnitPrice int64      `json:"unit_price"`
}
