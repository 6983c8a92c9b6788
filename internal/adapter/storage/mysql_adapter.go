package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
)

// MySQLAdapter is the relational store of record for orders, items and
// the product catalog.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) RunMigrations(migrationsDir string) error {
	driver, err := mysql.WithInstance(m.db, &mysql.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	mig, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsDir),
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := mig.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (m *MySQLAdapter) CreateOrder(ctx context.Context, order domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	shippingJSON, err := marshalShipping(order.Shipping)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, shipping_details, payment_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.ID.String(), order.UserID, order.Status, shippingJSON, order.PaymentToken,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES (?, ?, ?)`,
			order.ID.String(), item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := m.scanOrder(m.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, shipping_details, payment_token, created_at, updated_at
		FROM orders WHERE id = ?`, id.String()))
	if err != nil || order == nil {
		return order, err
	}

	if err := m.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (m *MySQLAdapter) GetPendingOrderByUser(ctx context.Context, userID int64) (*domain.Order, error) {
	order, err := m.scanOrder(m.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, shipping_details, payment_token, created_at, updated_at
		FROM orders WHERE user_id = ? AND status = ?
		ORDER BY created_at LIMIT 1`, userID, domain.OrderStatusPending))
	if err != nil || order == nil {
		return order, err
	}

	if err := m.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (m *MySQLAdapter) ListOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return m.listOrders(ctx, `
		SELECT id, user_id, status, shipping_details, payment_token, created_at, updated_at
		FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (m *MySQLAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return m.listOrders(ctx, `
		SELECT id, user_id, status, shipping_details, payment_token, created_at, updated_at
		FROM orders ORDER BY created_at DESC`)
}

func (m *MySQLAdapter) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []domain.OrderItem) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Full delete-and-recreate, never incremental patching.
	_, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID.String())
	if err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES (?, ?, ?)`,
			orderID.String(), item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE orders SET updated_at = NOW() WHERE id = ?`, orderID.String())
	if err != nil {
		return fmt.Errorf("touch order: %w", err)
	}

	return tx.Commit()
}

func (m *MySQLAdapter) SetShippingDetails(ctx context.Context, orderID uuid.UUID, shipping domain.ShippingDetails) error {
	shippingJSON, err := json.Marshal(shipping)
	if err != nil {
		return fmt.Errorf("marshal shipping details: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		UPDATE orders SET shipping_details = ?, updated_at = NOW() WHERE id = ?`,
		shippingJSON, orderID.String(),
	)
	if err != nil {
		return fmt.Errorf("update shipping details: %w", err)
	}
	return nil
}

// UpdateOrderStatus is the guarded transition: one conditional UPDATE
// whose WHERE clause pins the expected current status, with the
// rows-affected count deciding whether the transition applied. Two
// racing handlers can never both win.
func (m *MySQLAdapter) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, expected, next domain.OrderStatus, paymentToken string) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE orders
		SET status = ?, payment_token = COALESCE(NULLIF(?, ''), payment_token), updated_at = NOW()
		WHERE id = ? AND status = ?`,
		next, paymentToken, orderID.String(), expected,
	)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (m *MySQLAdapter) scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var id string
	var shippingJSON []byte

	err := row.Scan(&id, &order.UserID, &order.Status, &shippingJSON,
		&order.PaymentToken, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	order.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse order id: %w", err)
	}

	if len(shippingJSON) > 0 {
		var shipping domain.ShippingDetails
		if err := json.Unmarshal(shippingJSON, &shipping); err != nil {
			return nil, fmt.Errorf("unmarshal shipping details: %w", err)
		}
		order.Shipping = &shipping
	}

	return &order, nil
}

func (m *MySQLAdapter) loadItems(ctx context.Context, order *domain.Order) error {
	rows, err := m.db.QueryContext(ctx, `
		SELECT order_id, product_id, quantity
		FROM order_items WHERE order_id = ?`, order.ID.String())
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var orderID string
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (m *MySQLAdapter) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := m.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for i := range orders {
		if err := m.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func marshalShipping(shipping *domain.ShippingDetails) ([]byte, error) {
	if shipping == nil {
		return nil, nil
	}
	data, err := json.Marshal(shipping)
	if err != nil {
		return nil, fmt.Errorf("marshal shipping details: %w", err)
	}
	return data, nil
}
