package storage

import (
	"testing"
	"time"

	"checkout-gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(orderID, customerID, intentID string, createdAt time.Time) *models.Order {
	return &models.Order{
		OrderID:     orderID,
		CustomerID:  customerID,
		IntentID:    intentID,
		Status:      models.OrderPending,
		AmountMinor: 2500,
		Currency:    "eur",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestInMemoryStore_OrderRoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Now()

	order := newTestOrder("order_1", "cus_1", "pi_1", now)
	require.NoError(t, store.SaveOrder(order))

	got, err := store.GetOrder("order_1")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", got.CustomerID)
	assert.Equal(t, models.OrderPending, got.Status)

	// Mutating the returned copy must not affect the stored order
	got.Status = models.OrderPaid
	again, err := store.GetOrder("order_1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, again.Status)
}

func TestInMemoryStore_GetOrderNotFound(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.GetOrder("missing")
	assert.Error(t, err)
}

func TestInMemoryStore_UpdateOrder(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Now()

	order := newTestOrder("order_1", "cus_1", "pi_1", now)
	require.NoError(t, store.SaveOrder(order))

	order.Status = models.OrderPaid
	require.NoError(t, store.UpdateOrder(order))

	got, err := store.GetOrder("order_1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, got.Status)

	missing := newTestOrder("order_x", "cus_1", "pi_x", now)
	assert.Error(t, store.UpdateOrder(missing))
}

func TestInMemoryStore_ListOrdersNewestFirst(t *testing.T) {
	store := NewInMemoryStore()
	base := time.Now()

	require.NoError(t, store.SaveOrder(newTestOrder("order_old", "cus_1", "pi_a", base.Add(-2*time.Hour))))
	require.NoError(t, store.SaveOrder(newTestOrder("order_new", "cus_1", "pi_b", base)))
	require.NoError(t, store.SaveOrder(newTestOrder("order_other", "cus_2", "pi_c", base)))

	orders, err := store.ListOrders("cus_1", 10, 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "order_new", orders[0].OrderID)
	assert.Equal(t, "order_old", orders[1].OrderID)

	// Pagination
	page, err := store.ListOrders("cus_1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "order_old", page[0].OrderID)

	empty, err := store.ListOrders("cus_1", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestInMemoryStore_GetOrderByIntentID(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Now()

	require.NoError(t, store.SaveOrder(newTestOrder("order_1", "cus_1", "pi_abc", now)))

	got, err := store.GetOrderByIntentID("pi_abc")
	require.NoError(t, err)
	assert.Equal(t, "order_1", got.OrderID)

	_, err = store.GetOrderByIntentID("pi_missing")
	assert.Error(t, err)
}

func TestInMemoryStore_CustomerRoundTrip(t *testing.T) {
	store := NewInMemoryStore()

	customer := &models.Customer{
		CustomerID: "cus_1",
		Email:      "shopper@example.com",
		CreatedAt:  time.Now(),
	}
	require.NoError(t, store.SaveCustomer(customer))

	got, err := store.GetCustomer("cus_1")
	require.NoError(t, err)
	assert.Equal(t, "shopper@example.com", got.Email)
	assert.Empty(t, got.StripeCustomerID)

	got.StripeCustomerID = "cus_stripe_1"
	require.NoError(t, store.UpdateCustomer(got))

	again, err := store.GetCustomer("cus_1")
	require.NoError(t, err)
	assert.Equal(t, "cus_stripe_1", again.StripeCustomerID)

	_, err = store.GetCustomer("missing")
	assert.Error(t, err)
}
