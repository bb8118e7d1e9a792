package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
)

// CartHandler manages cart item endpoints for users and guest sessions.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// ownerScope narrows a query to the current user or guest session.
func (h *CartHandler) ownerScope(c *fiber.Ctx, query *gorm.DB) (*gorm.DB, error) {
	identity := middleware.CurrentIdentity(c)
	if !identity.Exclusive() {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "exactly one of user or session identity is required")
	}
	if identity.UserID != nil {
		return query.Where("user_id = ?", *identity.UserID), nil
	}
	return query.Where("session_id = ?", identity.SessionID), nil
}

// ListCartItems returns the current cart.
func (h *CartHandler) ListCartItems(c *fiber.Ctx) error {
	query, err := h.ownerScope(c, h.db.Model(&models.CartItem{}))
	if err != nil {
		return err
	}

	var items []models.CartItem
	if err := query.Preload("Product").Order("created_at asc").Find(&items).Error; err != nil {
		return err
	}

	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}

	return c.JSON(fiber.Map{"success": true, "data": items, "subtotal": subtotal})
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddCartItem puts a product into the cart, capturing its current price.
func (h *CartHandler) AddCartItem(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	if !identity.Exclusive() {
		return fiber.NewError(fiber.StatusUnauthorized, "exactly one of user or session identity is required")
	}

	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.db.First(&product, "id = ? AND is_active = ?", productID, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	item := models.CartItem{
		UserID:    identity.UserID,
		SessionID: identity.SessionID,
		ProductID: product.ID,
		Quantity:  req.Quantity,
		UnitPrice: product.Price,
	}

	if err := h.db.Create(&item).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem changes the quantity of an owned cart item.
func (h *CartHandler) UpdateCartItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must be positive")
	}

	query, err := h.ownerScope(c, h.db.Model(&models.CartItem{}))
	if err != nil {
		return err
	}

	res := query.Where("id = ?", id).Update("quantity", req.Quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "cart item not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "cart item updated"})
}

// RemoveCartItem deletes an owned cart item.
func (h *CartHandler) RemoveCartItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	query, err := h.ownerScope(c, h.db.Where("id = ?", id))
	if err != nil {
		return err
	}

	if err := query.Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
