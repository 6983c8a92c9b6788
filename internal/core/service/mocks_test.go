package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
	"github.com/ljourdain/atelier-shop/internal/port"
)

// Mock OrderRepository. UpdateOrderStatus holds the lock across
// check-and-set, mirroring the conditional UPDATE of the real store.
type mockOrderRepo struct {
	mu          sync.Mutex
	orders      map[uuid.UUID]domain.Order
	createCalls int
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]domain.Order)}
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	out := order
	out.Items = append([]domain.OrderItem(nil), order.Items...)
	return &out, nil
}

func (m *mockOrderRepo) GetPendingOrderByUser(_ context.Context, userID int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.orders {
		if order.UserID == userID && order.Status == domain.OrderStatusPending {
			out := order
			return &out, nil
		}
	}
	return nil, nil
}

func (m *mockOrderRepo) ListOrdersByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListOrders(_ context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, order := range m.orders {
		out = append(out, order)
	}
	return out, nil
}

func (m *mockOrderRepo) ReplaceItems(_ context.Context, orderID uuid.UUID, items []domain.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order := m.orders[orderID]
	order.Items = append([]domain.OrderItem(nil), items...)
	m.orders[orderID] = order
	return nil
}

func (m *mockOrderRepo) SetShippingDetails(_ context.Context, orderID uuid.UUID, shipping domain.ShippingDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order := m.orders[orderID]
	order.Shipping = &shipping
	m.orders[orderID] = order
	return nil
}

func (m *mockOrderRepo) UpdateOrderStatus(_ context.Context, orderID uuid.UUID, expected, next domain.OrderStatus, paymentToken string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok || order.Status != expected {
		return false, nil
	}
	order.Status = next
	if paymentToken != "" {
		order.PaymentToken = paymentToken
	}
	m.orders[orderID] = order
	return true, nil
}

// Mock CatalogRepository
type mockCatalog struct {
	products map[int64]domain.Product
}

func newMockCatalog(products ...domain.Product) *mockCatalog {
	m := &mockCatalog{products: make(map[int64]domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockCatalog) ListLatestProducts(context.Context, int) ([]domain.Product, error) {
	return nil, nil
}

func (m *mockCatalog) GetProductBySlug(context.Context, string, string) (*domain.Product, error) {
	return nil, nil
}

func (m *mockCatalog) GetCategoryBySlug(context.Context, string) (*domain.Category, error) {
	return nil, nil
}

func (m *mockCatalog) ListProductsByCategory(context.Context, int64) ([]domain.Product, error) {
	return nil, nil
}

func (m *mockCatalog) SearchProducts(context.Context, string) ([]domain.Product, error) {
	return nil, nil
}

func testProduct(id int64, name, price string) domain.Product {
	return domain.Product{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
	}
}

// Mock PaymentProvider
type mockProvider struct {
	mu        sync.Mutex
	intent    *domain.PaymentIntent
	intentErr error
	event     *domain.PaymentEvent
	verifyErr error
	calls     int
	lastReq   port.CreateIntentRequest
}

func (m *mockProvider) CreateIntent(_ context.Context, req port.CreateIntentRequest) (*domain.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastReq = req
	if m.intentErr != nil {
		return nil, m.intentErr
	}
	return m.intent, nil
}

func (m *mockProvider) VerifyWebhook([]byte, string) (*domain.PaymentEvent, error) {
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	out := *m.event
	return &out, nil
}

// Mock CacheRepository
type mockCache struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newMockCache() *mockCache {
	return &mockCache{seen: make(map[string]bool)}
}

func (m *mockCache) MarkEventProcessed(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.seen[eventID] {
		return false, nil
	}
	m.seen[eventID] = true
	return true, nil
}

// Mock EventPublisher
type mockPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func (m *mockPublisher) PublishOrderEvent(_ context.Context, event domain.OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) published() []domain.OrderEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OrderEvent(nil), m.events...)
}
