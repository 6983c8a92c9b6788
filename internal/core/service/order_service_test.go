package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
)

func TestGetOrCreatePendingOrderReusesExisting(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, newMockCatalog(), nil)

	first, err := svc.GetOrCreatePendingOrder(context.Background(), 7)
	require.NoError(t, err)
	second, err := svc.GetOrCreatePendingOrder(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.createCalls)
}

func TestGetOrCreatePendingOrderPerUser(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, newMockCatalog(), nil)

	a, err := svc.GetOrCreatePendingOrder(context.Background(), 1)
	require.NoError(t, err)
	b, err := svc.GetOrCreatePendingOrder(context.Background(), 2)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, domain.OrderStatusPending, a.Status)
}

func TestGetOrderOwnership(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, newMockCatalog(), nil)
	order, err := svc.GetOrCreatePendingOrder(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), order.ID, 2, false)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// Staff may read any order.
	got, err := svc.GetOrder(context.Background(), order.ID, 2, true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestListOrdersStaffSeesAll(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, newMockCatalog(), nil)
	_, err := svc.GetOrCreatePendingOrder(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.GetOrCreatePendingOrder(context.Background(), 2)
	require.NoError(t, err)

	mine, err := svc.ListOrders(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListOrders(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReplaceItems(t *testing.T) {
	repo := newMockOrderRepo()
	catalog := newMockCatalog(testProduct(1, "Print", "10.00"))
	svc := NewOrderService(repo, catalog, nil)
	order, err := svc.GetOrCreatePendingOrder(context.Background(), 1)
	require.NoError(t, err)

	err = svc.ReplaceItems(context.Background(), order.ID, 1, []domain.OrderItem{
		{ProductID: 1, Quantity: 3},
	})
	require.NoError(t, err)

	got, err := repo.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, order.ID, got.Items[0].OrderID)
	assert.Equal(t, 3, got.Items[0].Quantity)
}

func TestReplaceItemsRejectsBadInput(t *testing.T) {
	repo := newMockOrderRepo()
	catalog := newMockCatalog(testProduct(1, "Print", "10.00"))
	svc := NewOrderService(repo, catalog, nil)
	order, err := svc.GetOrCreatePendingOrder(context.Background(), 1)
	require.NoError(t, err)

	err = svc.ReplaceItems(context.Background(), order.ID, 1, []domain.OrderItem{
		{ProductID: 1, Quantity: 0},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = svc.ReplaceItems(context.Background(), order.ID, 1, []domain.OrderItem{
		{ProductID: 42, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReplaceItemsRejectsNonPending(t *testing.T) {
	repo := newMockOrderRepo()
	catalog := newMockCatalog(testProduct(1, "Print", "10.00"))
	svc := NewOrderService(repo, catalog, nil)
	order, err := svc.GetOrCreatePendingOrder(context.Background(), 1)
	require.NoError(t, err)

	applied, err := repo.UpdateOrderStatus(context.Background(), order.ID, domain.OrderStatusPending, domain.OrderStatusConfirmed, "")
	require.NoError(t, err)
	require.True(t, applied)

	err = svc.ReplaceItems(context.Background(), order.ID, 1, []domain.OrderItem{
		{ProductID: 1, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrInvalidOrderState)
}

func TestConfirm(t *testing.T) {
	repo := newMockOrderRepo()
	publisher := &mockPublisher{}
	svc := NewOrderService(repo, newMockCatalog(), publisher)
	order, err := svc.GetOrCreatePendingOrder(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(context.Background(), order.ID, 1, false))

	got, err := repo.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, got.Status)

	events := publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventOrderConfirmed, events[0].Type)
	assert.Equal(t, order.ID.String(), events[0].OrderID)
}

func TestConfirmIsGuarded(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, newMockCatalog(), nil)
	order, err := svc.GetOrCreatePendingOrder(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(context.Background(), order.ID, 1, false))

	// Second confirm finds the order already confirmed.
	err = svc.Confirm(context.Background(), order.ID, 1, false)
	assert.ErrorIs(t, err, ErrInvalidOrderState)

	got, err := repo.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, got.Status)
}

func TestConfirmRejectsCancelled(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, newMockCatalog(), nil)
	order, err := svc.GetOrCreatePendingOrder(context.Background(), 1)
	require.NoError(t, err)

	_, err = repo.UpdateOrderStatus(context.Background(), order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled, "")
	require.NoError(t, err)

	err = svc.Confirm(context.Background(), order.ID, 1, false)
	assert.ErrorIs(t, err, ErrInvalidOrderState)
}

func TestConfirmOwnership(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, newMockCatalog(), nil)
	order, err := svc.GetOrCreatePendingOrder(context.Background(), 1)
	require.NoError(t, err)

	err = svc.Confirm(context.Background(), order.ID, 2, false)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	got, err := repo.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
}
