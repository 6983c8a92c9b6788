package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ShippingDetails is attached to an order at checkout time, before the
// payment intent is created.
type ShippingDetails struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone,omitempty"`
}

type OrderItem struct {
	OrderID   uuid.UUID
	ProductID int64
	Quantity  int
}

// Order is the storefront's unit of checkout. Its UUID doubles as the
// correlation id embedded in payment processor metadata, so an
// asynchronous notification can always be mapped back to the row it
// concerns.
type Order struct {
	ID           uuid.UUID
	UserID       int64
	Status       OrderStatus
	Shipping     *ShippingDetails
	PaymentToken string
	Items        []OrderItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
