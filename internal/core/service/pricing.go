package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
	"github.com/ljourdain/atelier-shop/internal/port"
)

// PricingCalculator derives line-item subtotals and order totals from
// current catalog prices. Totals are recomputed on every call; nothing
// is cached or snapshotted, so they always reflect the live catalog.
type PricingCalculator struct {
	catalog port.CatalogRepository
}

func NewPricingCalculator(catalog port.CatalogRepository) *PricingCalculator {
	return &PricingCalculator{catalog: catalog}
}

type PricedItem struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
}

type PricedOrder struct {
	Order *domain.Order
	Items []PricedItem
	Total decimal.Decimal
}

// PriceOrder resolves every item against the catalog. An order with no
// items prices to zero.
func (c *PricingCalculator) PriceOrder(ctx context.Context, order *domain.Order) (*PricedOrder, error) {
	priced := &PricedOrder{
		Order: order,
		Items: make([]PricedItem, 0, len(order.Items)),
		Total: decimal.Zero,
	}

	for _, item := range order.Items {
		product, err := c.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("price lookup for product %d: %w", item.ProductID, err)
		}
		if product == nil {
			return nil, fmt.Errorf("price lookup for product %d: %w", item.ProductID, ErrProductNotFound)
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		priced.Items = append(priced.Items, PricedItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    item.Quantity,
			Subtotal:    subtotal,
		})
		priced.Total = priced.Total.Add(subtotal)
	}

	return priced, nil
}

// OrderTotal computes the order total in major currency units.
func (c *PricingCalculator) OrderTotal(ctx context.Context, order *domain.Order) (decimal.Decimal, error) {
	priced, err := c.PriceOrder(ctx, order)
	if err != nil {
		return decimal.Zero, err
	}
	return priced.Total, nil
}

// MinorUnits converts a major-unit total into the processor's
// minor-unit amount (e.g. 30.00 -> 3000).
func MinorUnits(total decimal.Decimal) int64 {
	return total.Shift(2).Round(0).IntPart()
}
