package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/velora/internal/models"
)

// StatusPolicy is the configurable allow-list governing post-creation order
// transitions. Administrative advances, cancellation and refund eligibility
// are all policy, not hard-coded.
type StatusPolicy struct {
	Advance    map[models.OrderStatus][]models.OrderStatus
	Cancelable []models.OrderStatus
	Refundable []models.OrderStatus
}

// DefaultStatusPolicy enforces the strict linear advance chain
// pending→confirmed→processing→shipped→delivered, allows cancellation up to
// processing, and allows refund from any non-terminal status once payment is
// confirmed.
func DefaultStatusPolicy() StatusPolicy {
	return StatusPolicy{
		Advance: map[models.OrderStatus][]models.OrderStatus{
			models.OrderStatusPending:    {models.OrderStatusConfirmed},
			models.OrderStatusConfirmed:  {models.OrderStatusProcessing},
			models.OrderStatusProcessing: {models.OrderStatusShipped},
			models.OrderStatusShipped:    {models.OrderStatusDelivered},
		},
		Cancelable: []models.OrderStatus{
			models.OrderStatusPending,
			models.OrderStatusConfirmed,
			models.OrderStatusProcessing,
		},
		Refundable: []models.OrderStatus{
			models.OrderStatusPending,
			models.OrderStatusConfirmed,
			models.OrderStatusProcessing,
			models.OrderStatusShipped,
			models.OrderStatusDelivered,
		},
	}
}

// CanAdvance reports whether the administrative transition from→to is allowed.
func (p StatusPolicy) CanAdvance(from, to models.OrderStatus) bool {
	for _, allowed := range p.Advance[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanCancel reports whether an order in the given status may be cancelled.
func (p StatusPolicy) CanCancel(status models.OrderStatus) bool {
	for _, s := range p.Cancelable {
		if s == status {
			return true
		}
	}
	return false
}

// CanRefund reports whether an order in the given status may be refunded.
func (p StatusPolicy) CanRefund(status models.OrderStatus) bool {
	for _, s := range p.Refundable {
		if s == status {
			return true
		}
	}
	return false
}

// OrderService governs the post-creation order lifecycle. Cancel and refund
// are owner-only; administrative advances are authorized upstream. Ownership
// mismatches are reported as not-found, matching the checkout service.
type OrderService struct {
	orders   OrderStore
	payments PaymentStore
	notifier Notifier
	policy   StatusPolicy
}

// NewOrderService constructs OrderService.
func NewOrderService(orders OrderStore, payments PaymentStore, notifier Notifier, policy StatusPolicy) *OrderService {
	return &OrderService{orders: orders, payments: payments, notifier: notifier, policy: policy}
}

// Get returns an order to its owner.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID, requester Identity) (*models.Order, error) {
	return s.getOwned(ctx, id, requester)
}

// List returns the requester's orders, newest first. A requester with no
// credential, or both, gets nothing: a missing session would otherwise match
// the empty session column on user-owned rows.
func (s *OrderService) List(ctx context.Context, requester Identity, limit, offset int) ([]models.Order, int64, error) {
	if !requester.Exclusive() {
		return nil, 0, E(KindAmbiguousOwnership, "exactly one of user or session identity is required")
	}
	return s.orders.ListByOwner(ctx, requester, limit, offset)
}

// Cancel cancels an owner's order. The reason is recorded and may be empty;
// the transport layer enforces that the field itself was supplied.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, requester Identity, reason string) (*models.Order, error) {
	order, err := s.getOwned(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanCancel(order.Status) {
		return nil, E(KindInvalidState, "cannot cancel order in status %s", order.Status)
	}

	previous := order.Status
	order.Status = models.OrderStatusCancelled
	order.PaymentStatus = models.PaymentStatusCancelled
	order.CancelReason = reason

	if err := s.transition(ctx, order, previous); err != nil {
		return nil, err
	}
	s.notifyStatus(order, previous)

	return order, nil
}

// Refund refunds an owner's order. A confirmed payment on file is a hard
// precondition; refundable source statuses are policy.
func (s *OrderService) Refund(ctx context.Context, id uuid.UUID, requester Identity) (*models.Order, error) {
	order, err := s.getOwned(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	if order.Status == models.OrderStatusRefunded {
		return nil, E(KindInvalidState, "order is already refunded")
	}
	if !s.policy.CanRefund(order.Status) {
		return nil, E(KindInvalidState, "cannot refund order in status %s", order.Status)
	}

	confirmed, err := s.payments.HasConfirmed(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, E(KindNoConfirmedPayment, "order %s has no confirmed payment", order.OrderNumber)
	}

	previous := order.Status
	order.Status = models.OrderStatusRefunded
	order.PaymentStatus = models.PaymentStatusRefunded

	if err := s.transition(ctx, order, previous); err != nil {
		return nil, err
	}
	s.notifyStatus(order, previous)

	return order, nil
}

// Advance performs an administrative status transition. The caller is
// trusted; the policy allow-list is still enforced.
func (s *OrderService) Advance(ctx context.Context, id uuid.UUID, next models.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, &Error{
			Kind:    KindValidationFailed,
			Message: "invalid order status",
			Details: []string{"unknown status " + next.String()},
		}
	}

	order, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanAdvance(order.Status, next) {
		return nil, E(KindInvalidState, "transition from %s to %s is not allowed", order.Status, next)
	}

	previous := order.Status
	order.Status = next

	if err := s.transition(ctx, order, previous); err != nil {
		return nil, err
	}
	s.notifyStatus(order, previous)

	return order, nil
}

// ConfirmPayment marks the order's payment as confirmed and captured. It is
// invoked by the payment provider callback, not by order owners.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, provider string) (*models.Order, error) {
	order, err := s.getByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, E(KindInvalidState, "cannot confirm payment for %s order", order.Status)
	}

	now := time.Now()
	payment, err := s.payments.GetByOrder(ctx, order.ID)
	switch {
	case err == nil:
		if payment.Status == models.PaymentStatusConfirmed {
			return order, nil
		}
		payment.Status = models.PaymentStatusConfirmed
		payment.ConfirmedAt = &now
		if err := s.payments.Save(ctx, payment); err != nil {
			return nil, err
		}
	case errors.Is(err, ErrRecordMissing):
		payment = &models.Payment{
			OrderID:     order.ID,
			Provider:    provider,
			Status:      models.PaymentStatusConfirmed,
			Amount:      order.Total,
			Currency:    order.Currency,
			ConfirmedAt: &now,
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	order.PaymentStatus = models.PaymentStatusPaid
	if err := s.transition(ctx, order, order.Status); err != nil {
		return nil, err
	}

	return order, nil
}

// transition persists a status change guarded by the status read earlier, so
// two racing writers cannot both apply. The loser sees invalid_state.
func (s *OrderService) transition(ctx context.Context, order *models.Order, from models.OrderStatus) error {
	if err := s.orders.TransitionStatus(ctx, order, from); err != nil {
		if errors.Is(err, ErrOrderStateChanged) {
			return E(KindInvalidState, "order status changed, please retry")
		}
		return err
	}
	return nil
}

func (s *OrderService) getByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordMissing) {
			return nil, E(KindNotFound, "order not found")
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) getOwned(ctx context.Context, id uuid.UUID, requester Identity) (*models.Order, error) {
	order, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.OwnedBy(requester.UserID, requester.SessionID) {
		return nil, E(KindNotFound, "order not found")
	}
	return order, nil
}

func (s *OrderService) notifyStatus(order *models.Order, previous models.OrderStatus) {
	if s.notifier != nil {
		go s.notifier.NotifyOrderStatus(order, previous)
	}
}
