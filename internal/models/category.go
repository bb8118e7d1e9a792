package models

import "github.com/google/uuid"

// Category is a node in the hierarchical catalog taxonomy. The parent
// relation must never form a cycle; child lists are derived, not stored.
type Category struct {
	BaseModel
	Name        string     `json:"name"`
	Slug        string     `gorm:"uniqueIndex" json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	SortOrder   *int       `json:"sort_order"`
	IsActive    bool       `json:"is_active"`
	Published   bool       `json:"published"`
	Products    []Product  `json:"products,omitempty"`
}

// SortKey returns the effective sort order, treating nil as 0.
func (c *Category) SortKey() int {
	if c.SortOrder == nil {
		return 0
	}
	return *c.SortOrder
}
