package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
)

// AddressHandler manages address book endpoints for users and guest sessions.
type AddressHandler struct {
	db *gorm.DB
}

// NewAddressHandler constructs AddressHandler.
func NewAddressHandler(db *gorm.DB) *AddressHandler {
	return &AddressHandler{db: db}
}

func (h *AddressHandler) ownerScope(c *fiber.Ctx, query *gorm.DB) (*gorm.DB, error) {
	identity := middleware.CurrentIdentity(c)
	if !identity.Exclusive() {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "exactly one of user or session identity is required")
	}
	if identity.UserID != nil {
		return query.Where("user_id = ?", *identity.UserID), nil
	}
	return query.Where("session_id = ?", identity.SessionID), nil
}

// ListAddresses returns the owner's addresses.
func (h *AddressHandler) ListAddresses(c *fiber.Ctx) error {
	query, err := h.ownerScope(c, h.db.Model(&models.Address{}))
	if err != nil {
		return err
	}

	var addresses []models.Address
	if err := query.Order("created_at asc").Find(&addresses).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": addresses})
}

type createAddressRequest struct {
	Label       string `json:"label"`
	Recipient   string `json:"recipient"`
	AddressLine string `json:"address_line"`
	Apartment   string `json:"apartment"`
	City        string `json:"city"`
	District    string `json:"district"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	IsDefault   bool   `json:"is_default"`
}

// CreateAddress creates an address for the current owner.
func (h *AddressHandler) CreateAddress(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	if !identity.Exclusive() {
		return fiber.NewError(fiber.StatusUnauthorized, "exactly one of user or session identity is required")
	}

	var req createAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.AddressLine == "" || req.City == "" {
		return fiber.NewError(fiber.StatusBadRequest, "address_line and city are required")
	}

	address := models.Address{
		UserID:      identity.UserID,
		SessionID:   identity.SessionID,
		Label:       req.Label,
		Recipient:   req.Recipient,
		AddressLine: req.AddressLine,
		Apartment:   req.Apartment,
		City:        req.City,
		District:    req.District,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		IsDefault:   req.IsDefault,
	}

	if err := h.db.Create(&address).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": address})
}

type updateAddressRequest struct {
	Label       *string `json:"label"`
	Recipient   *string `json:"recipient"`
	AddressLine *string `json:"address_line"`
	Apartment   *string `json:"apartment"`
	City        *string `json:"city"`
	District    *string `json:"district"`
	PostalCode  *string `json:"postal_code"`
	Country     *string `json:"country"`
	IsDefault   *bool   `json:"is_default"`
}

// UpdateAddress updates an owned address.
func (h *AddressHandler) UpdateAddress(c *fiber.Ctx) error {
	addrID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Label != nil {
		updates["label"] = *req.Label
	}
	if req.Recipient != nil {
		updates["recipient"] = *req.Recipient
	}
	if req.AddressLine != nil {
		updates["address_line"] = *req.AddressLine
	}
	if req.Apartment != nil {
		updates["apartment"] = *req.Apartment
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.District != nil {
		updates["district"] = *req.District
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.IsDefault != nil {
		updates["is_default"] = *req.IsDefault
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	query, err := h.ownerScope(c, h.db.Model(&models.Address{}))
	if err != nil {
		return err
	}

	res := query.Where("id = ?", addrID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "address not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "address updated"})
}

// DeleteAddress removes an owned address.
func (h *AddressHandler) DeleteAddress(c *fiber.Ctx) error {
	addrID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	query, err := h.ownerScope(c, h.db.Where("id = ?", addrID))
	if err != nil {
		return err
	}

	if err := query.Delete(&models.Address{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "address deleted"})
}
