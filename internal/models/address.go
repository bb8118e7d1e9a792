package models

import "github.com/google/uuid"

// Address belongs to either an authenticated user or a guest session,
// never both.
type Address struct {
	BaseModel
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	SessionID   string     `gorm:"index" json:"session_id,omitempty"`
	Label       string     `json:"label"`
	Recipient   string     `json:"recipient"`
	AddressLine string     `json:"address_line"`
	Apartment   string     `json:"apartment"`
	City        string     `json:"city"`
	District    string     `json:"district"`
	PostalCode  string     `json:"postal_code"`
	Country     string     `json:"country"`
	IsDefault   bool       `json:"is_default"`
}

// OwnedBy reports whether the address belongs to the given user/session pair.
func (a *Address) OwnedBy(userID *uuid.UUID, sessionID string) bool {
	if a.UserID != nil {
		return userID != nil && *a.UserID == *userID
	}
	return a.SessionID != "" && a.SessionID == sessionID
}

// AddressSnapshot is the subset of address fields frozen onto an order.
type AddressSnapshot struct {
	Recipient   string `json:"recipient"`
	AddressLine string `json:"address_line"`
	Apartment   string `json:"apartment"`
	City        string `json:"city"`
	District    string `json:"district"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

// Snapshot copies the printable fields for order persistence.
func (a *Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		Recipient:   a.Recipient,
		AddressLine: a.AddressLine,
		Apartment:   a.Apartment,
		City:        a.City,
		District:    a.District,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
	}
}
