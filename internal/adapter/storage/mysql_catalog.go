package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
)

const productColumns = `
	p.id, p.category_id, c.name, c.slug, p.name, p.slug, p.description,
	p.price, p.image_url, p.thumbnail_url, p.date_added`

func (m *MySQLAdapter) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return scanProduct(m.db.QueryRowContext(ctx, `
		SELECT`+productColumns+`
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE p.id = ?`, id))
}

func (m *MySQLAdapter) ListLatestProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	return m.listProducts(ctx, `
		SELECT`+productColumns+`
		FROM products p JOIN categories c ON c.id = p.category_id
		ORDER BY p.date_added DESC LIMIT ?`, limit)
}

func (m *MySQLAdapter) GetProductBySlug(ctx context.Context, categorySlug, productSlug string) (*domain.Product, error) {
	return scanProduct(m.db.QueryRowContext(ctx, `
		SELECT`+productColumns+`
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE c.slug = ? AND p.slug = ?`, categorySlug, productSlug))
}

func (m *MySQLAdapter) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var cat domain.Category
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, slug FROM categories WHERE slug = ?`, slug,
	).Scan(&cat.ID, &cat.Name, &cat.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query category: %w", err)
	}
	return &cat, nil
}

func (m *MySQLAdapter) ListProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	return m.listProducts(ctx, `
		SELECT`+productColumns+`
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE p.category_id = ? ORDER BY p.date_added DESC`, categoryID)
}

func (m *MySQLAdapter) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	pattern := "%" + query + "%"
	return m.listProducts(ctx, `
		SELECT`+productColumns+`
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE p.name LIKE ? OR p.description LIKE ?
		ORDER BY p.date_added DESC`, pattern, pattern)
}

func (m *MySQLAdapter) listProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.CategoryName, &p.CategorySlug, &p.Name,
		&p.Slug, &p.Description, &p.Price, &p.ImageURL, &p.ThumbnailURL, &p.DateAdded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}
