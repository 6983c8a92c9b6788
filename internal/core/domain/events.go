package domain

import "time"

const (
	EventOrderConfirmed = "order.confirmed"
	EventOrderCancelled = "order.cancelled"
)

// OrderEvent is the lifecycle event published after a status transition
// has been applied.
type OrderEvent struct {
	EventID   string         `json:"event_id"`
	OrderID   string         `json:"order_id"`
	Type      string         `json:"type"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload,omitempty"`
}
