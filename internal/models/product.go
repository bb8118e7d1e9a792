package models

import "github.com/google/uuid"

// Product is a purchasable catalog entry. Prices are minor units.
type Product struct {
	BaseModel
	Slug             string     `gorm:"uniqueIndex" json:"slug"`
	Name             string     `json:"name"`
	SKU              string     `gorm:"uniqueIndex" json:"sku"`
	ShortDescription string     `json:"short_description"`
	LongDescription  string     `json:"long_description"`
	Price            int64      `json:"price"`
	Currency         string     `json:"currency"`
	HeroImage        string     `json:"hero_image"`
	IsActive         bool       `json:"is_active"`
	CategoryID       *uuid.UUID `gorm:"type:uuid" json:"category_id"`
	Category         *Category  `json:"category,omitempty"`
}
