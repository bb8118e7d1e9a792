package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/services"
	"github.com/example/velora/internal/utils"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListOrders returns orders for the current user or guest session.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	orders, total, err := h.orders.List(c.Context(), middleware.CurrentIdentity(c), pg.Limit, pg.Offset)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order to its owner.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.Get(c.Context(), id, middleware.CurrentIdentity(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type cancelOrderRequest struct {
	Reason *string `json:"reason"`
}

// CancelOrder cancels an owner's order. The reason field must be present,
// though it may be empty.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req cancelOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Reason == nil {
		return fiber.NewError(fiber.StatusBadRequest, "reason field is required")
	}

	order, err := h.orders.Cancel(c.Context(), id, middleware.CurrentIdentity(c), *req.Reason)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// RefundOrder refunds an owner's order with a confirmed payment.
func (h *OrderHandler) RefundOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.Refund(c.Context(), id, middleware.CurrentIdentity(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type advanceOrderRequest struct {
	Status string `json:"status"`
}

// AdvanceOrder performs an administrative status transition.
func (h *OrderHandler) AdvanceOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req advanceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.Advance(c.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type confirmPaymentRequest struct {
	Provider string `json:"provider"`
}

// ConfirmPayment marks the order's payment confirmed. Invoked by payment
// provider callbacks or operators, not by order owners.
func (h *OrderHandler) ConfirmPayment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req confirmPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Provider == "" {
		req.Provider = "manual"
	}

	order, err := h.orders.ConfirmPayment(c.Context(), id, req.Provider)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"id":             order.ID,
		"order_number":   order.OrderNumber,
		"payment_status": order.PaymentStatus,
	}})
}
