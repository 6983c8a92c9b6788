package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64
	Name string
	Slug string
}

// Product is a catalog entry. Price is the live unit price; order
// subtotals are always computed against it at read time, never
// snapshotted onto the order.
type Product struct {
	ID           int64
	CategoryID   int64
	CategoryName string
	CategorySlug string
	Name         string
	Slug         string
	Description  string
	Price        decimal.Decimal
	ImageURL     string
	ThumbnailURL string
	DateAdded    time.Time
}
