package handler

import (
	"fmt"
	"time"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
	"github.com/ljourdain/atelier-shop/internal/core/service"
)

// Write models and read models are deliberately separate shapes: the
// write side carries only what the client may set, the read side adds
// the computed pricing fields.

type ShippingRequest struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
}

func (r ShippingRequest) toDomain() domain.ShippingDetails {
	return domain.ShippingDetails{
		Name:         r.Name,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		PostalCode:   r.PostalCode,
		Country:      r.Country,
		Phone:        r.Phone,
	}
}

type OrderItemWriteRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type OrderItemsWriteRequest struct {
	Items []OrderItemWriteRequest `json:"items"`
}

type OrderItemResponse struct {
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductPrice string `json:"product_price"`
	Quantity     int    `json:"quantity"`
	ItemSubtotal string `json:"item_subtotal"`
}

type OrderResponse struct {
	OrderID    string              `json:"order_id"`
	CreatedAt  time.Time           `json:"created_at"`
	Status     string              `json:"status"`
	Items      []OrderItemResponse `json:"items"`
	TotalPrice string              `json:"total_price"`
}

func toOrderResponse(priced *service.PricedOrder) OrderResponse {
	items := make([]OrderItemResponse, 0, len(priced.Items))
	for _, item := range priced.Items {
		items = append(items, OrderItemResponse{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductPrice: item.UnitPrice.StringFixed(2),
			Quantity:     item.Quantity,
			ItemSubtotal: item.Subtotal.StringFixed(2),
		})
	}
	return OrderResponse{
		OrderID:    priced.Order.ID.String(),
		CreatedAt:  priced.Order.CreatedAt,
		Status:     string(priced.Order.Status),
		Items:      items,
		TotalPrice: priced.Total.StringFixed(2),
	}
}

type ProductResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CategoryName string `json:"category_name"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		CategoryName: p.CategoryName,
		URL:          fmt.Sprintf("/%s/%s/", p.CategorySlug, p.Slug),
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		ImageURL:     p.ImageURL,
		ThumbnailURL: p.ThumbnailURL,
	}
}

func toProductResponses(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

type CategoryResponse struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	URL      string            `json:"url"`
	Products []ProductResponse `json:"products"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type PendingOrderResponse struct {
	OrderID *string `json:"orderId"`
}

type CreatePaymentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type ConfirmResponse struct {
	Success bool `json:"success"`
}

type WebhookResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
