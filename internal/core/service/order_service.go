package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
	"github.com/ljourdain/atelier-shop/internal/logging"
	"github.com/ljourdain/atelier-shop/internal/port"
)

// OrderService owns the order lifecycle up to and including the
// synchronous confirm path. The asynchronous webhook path lives in
// PaymentService; both converge on OrderRepository.UpdateOrderStatus,
// which is the single guarded transition point.
type OrderService struct {
	orders    port.OrderRepository
	catalog   port.CatalogRepository
	publisher port.EventPublisher
}

// NewOrderService builds an OrderService. publisher may be nil, in
// which case lifecycle events are not emitted.
func NewOrderService(orders port.OrderRepository, catalog port.CatalogRepository, publisher port.EventPublisher) *OrderService {
	return &OrderService{
		orders:    orders,
		catalog:   catalog,
		publisher: publisher,
	}
}

// GetOrCreatePendingOrder returns the user's existing pending order, or
// creates an empty one. At most one pending order exists per user; a
// repeat checkout must land on the same order id.
func (s *OrderService) GetOrCreatePendingOrder(ctx context.Context, userID int64) (*domain.Order, error) {
	existing, err := s.orders.GetPendingOrderByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("pending order lookup: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// GetOrder fetches an order, enforcing ownership unless staff.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID, userID int64, staff bool) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order lookup: %w", err)
	}
	if order == nil || (!staff && order.UserID != userID) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns the caller's orders; staff sees every order.
func (s *OrderService) ListOrders(ctx context.Context, userID int64, staff bool) ([]domain.Order, error) {
	if staff {
		return s.orders.ListOrders(ctx)
	}
	return s.orders.ListOrdersByUser(ctx, userID)
}

// ReplaceItems rewrites the order's item set wholesale. Only pending
// orders accept item writes.
func (s *OrderService) ReplaceItems(ctx context.Context, orderID uuid.UUID, userID int64, items []domain.OrderItem) error {
	order, err := s.GetOrder(ctx, orderID, userID, false)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusPending {
		return ErrInvalidOrderState
	}

	for i := range items {
		if items[i].Quantity <= 0 {
			return fmt.Errorf("item %d: %w", i, ErrInvalidQuantity)
		}
		product, err := s.catalog.GetProduct(ctx, items[i].ProductID)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if product == nil {
			return fmt.Errorf("item %d: %w", i, ErrProductNotFound)
		}
		items[i].OrderID = orderID
	}

	if err := s.orders.ReplaceItems(ctx, orderID, items); err != nil {
		return fmt.Errorf("replace items: %w", err)
	}
	return nil
}

// Confirm is the client-initiated synchronous confirmation. The guarded
// update means that when a webhook-driven confirmation races this call,
// whichever lands first wins and the other sees ErrInvalidOrderState or
// a webhook no-op respectively.
func (s *OrderService) Confirm(ctx context.Context, orderID uuid.UUID, userID int64, staff bool) error {
	order, err := s.GetOrder(ctx, orderID, userID, staff)
	if err != nil {
		return err
	}

	applied, err := s.orders.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusConfirmed, "")
	if err != nil {
		return fmt.Errorf("confirm order %s: %w", order.ID, err)
	}
	if !applied {
		return ErrInvalidOrderState
	}

	s.publish(ctx, order.ID.String(), domain.EventOrderConfirmed, map[string]any{"source": "confirm"})
	return nil
}

func (s *OrderService) publish(ctx context.Context, orderID, eventType string, payload map[string]any) {
	if s.publisher == nil {
		return
	}
	event := domain.OrderEvent{
		EventID:   uuid.New().String(),
		OrderID:   orderID,
		Type:      eventType,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		logging.Log(logging.Fields{
			Component: "order_service",
			OrderID:   orderID,
			Outcome:   "publish_failed",
			Message:   eventType,
			Error:     err.Error(),
		})
	}
}
