package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/services"
)

// CheckoutHandler manages checkout session endpoints.
type CheckoutHandler struct {
	checkouts *services.CheckoutService
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(checkouts *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkouts: checkouts}
}

type createCheckoutRequest struct {
	ShippingAddressID string   `json:"shipping_address_id"`
	BillingAddressID  string   `json:"billing_address_id"`
	ShippingMethod    string   `json:"shipping_method"`
	CartItemIDs       []string `json:"cart_item_ids"`
}

// CreateCheckout opens a checkout session for the current user or guest.
func (h *CheckoutHandler) CreateCheckout(c *fiber.Ctx) error {
	var req createCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	shippingID, err := uuid.Parse(req.ShippingAddressID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid shipping_address_id")
	}
	billingID, err := uuid.Parse(req.BillingAddressID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid billing_address_id")
	}
	itemIDs, err := parseUUIDs(req.CartItemIDs)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid cart_item_ids")
	}

	checkout, err := h.checkouts.Create(c.Context(), services.CreateCheckoutInput{
		Owner:             middleware.CurrentIdentity(c),
		ShippingAddressID: shippingID,
		BillingAddressID:  billingID,
		ShippingMethod:    req.ShippingMethod,
		CartItemIDs:       itemIDs,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": checkout})
}

type validateCheckoutRequest struct {
	ShippingAddressID *string  `json:"shipping_address_id"`
	BillingAddressID  *string  `json:"billing_address_id"`
	ShippingMethod    *string  `json:"shipping_method"`
	Discount          *int64   `json:"discount"`
	CartItemIDs       []string `json:"cart_item_ids"`
}

// ValidateCheckout re-validates an active checkout and applies updates.
func (h *CheckoutHandler) ValidateCheckout(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req validateCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := services.ValidateCheckoutInput{
		ShippingMethod: req.ShippingMethod,
		Discount:       req.Discount,
	}
	if req.ShippingAddressID != nil {
		parsed, err := uuid.Parse(*req.ShippingAddressID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid shipping_address_id")
		}
		updates.ShippingAddressID = &parsed
	}
	if req.BillingAddressID != nil {
		parsed, err := uuid.Parse(*req.BillingAddressID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid billing_address_id")
		}
		updates.BillingAddressID = &parsed
	}
	if req.CartItemIDs != nil {
		itemIDs, err := parseUUIDs(req.CartItemIDs)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid cart_item_ids")
		}
		updates.CartItemIDs = itemIDs
	}

	checkout, err := h.checkouts.Validate(c.Context(), id, middleware.CurrentIdentity(c), updates)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": checkout})
}

// CompleteCheckout turns an active checkout into an order.
func (h *CheckoutHandler) CompleteCheckout(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.checkouts.Complete(c.Context(), id, middleware.CurrentIdentity(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":           order.ID,
			"order_number": order.OrderNumber,
			"status":       order.Status,
			"placed_at":    order.PlacedAt,
			"total":        order.Total,
			"currency":     order.Currency,
		},
	})
}

// AbandonCheckout marks an active checkout abandoned.
func (h *CheckoutHandler) AbandonCheckout(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	checkout, err := h.checkouts.Abandon(c.Context(), id, middleware.CurrentIdentity(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": checkout})
}

// GetCheckout returns a checkout to its owner.
func (h *CheckoutHandler) GetCheckout(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	checkout, err := h.checkouts.Get(c.Context(), id, middleware.CurrentIdentity(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": checkout})
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
