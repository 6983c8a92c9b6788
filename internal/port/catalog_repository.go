package port

import (
	"context"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
)

type CatalogRepository interface {
	// GetProduct retrieves a product by id, nil when absent
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// ListLatestProducts returns the most recently added products
	ListLatestProducts(ctx context.Context, limit int) ([]domain.Product, error)

	// GetProductBySlug retrieves a product by category and product slug, nil when absent
	GetProductBySlug(ctx context.Context, categorySlug, productSlug string) (*domain.Product, error)

	// GetCategoryBySlug retrieves a category by slug, nil when absent
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)

	// ListProductsByCategory returns a category's products, newest first
	ListProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)

	// SearchProducts matches the query against product names and descriptions
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
}
