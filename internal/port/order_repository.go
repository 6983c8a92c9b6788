package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
)

type OrderRepository interface {
	// CreateOrder persists a new order and its items
	CreateOrder(ctx context.Context, order domain.Order) error

	// GetOrder retrieves an order with its items, nil when absent
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// GetPendingOrderByUser returns the user's pending order, nil when none exists
	GetPendingOrderByUser(ctx context.Context, userID int64) (*domain.Order, error)

	// ListOrdersByUser returns all orders owned by the user, newest first
	ListOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error)

	// ListOrders returns every order, newest first (staff visibility)
	ListOrders(ctx context.Context) ([]domain.Order, error)

	// ReplaceItems rewrites the order's item set wholesale
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []domain.OrderItem) error

	// SetShippingDetails persists shipping details onto the order
	SetShippingDetails(ctx context.Context, orderID uuid.UUID, shipping domain.ShippingDetails) error

	// UpdateOrderStatus atomically moves the order from expected to next
	// status, setting the payment token when one is given. Returns false
	// when the order's current status differs from expected.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, expected, next domain.OrderStatus, paymentToken string) (bool, error)
}
