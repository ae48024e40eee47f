package services

import (
	"context"
	"testing"
	"time"

	"checkout-gateway/internal/kafka"
	"checkout-gateway/internal/logger"
	"checkout-gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore implements the storage.Store interface for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveOrder(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockStore) GetOrder(orderID string) (*models.Order, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockStore) UpdateOrder(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockStore) ListOrders(customerID string, limit, offset int) ([]*models.Order, error) {
	args := m.Called(customerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockStore) GetOrderByIntentID(intentID string) (*models.Order, error) {
	args := m.Called(intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockStore) SaveCustomer(customer *models.Customer) error {
	args := m.Called(customer)
	return args.Error(0)
}

func (m *MockStore) GetCustomer(customerID string) (*models.Customer, error) {
	args := m.Called(customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockStore) UpdateCustomer(customer *models.Customer) error {
	args := m.Called(customer)
	return args.Error(0)
}

func newTestCheckoutService(t *testing.T, store *MockStore) *CheckoutService {
	t.Helper()
	log := logger.NewLogger()
	producer, err := kafka.NewProducer(nil, true, log)
	require.NoError(t, err)
	return NewCheckoutService(store, producer, log)
}

func TestRecordConfirmedOrder_CreatesOrderOnSuccess(t *testing.T) {
	store := new(MockStore)
	store.On("GetOrderByIntentID", "pi_1").Return(nil, assert.AnError)
	store.On("SaveOrder", mock.AnythingOfType("*models.Order")).Return(nil)

	svc := newTestCheckoutService(t, store)

	orderID, err := svc.RecordConfirmedOrder(context.Background(), "cus_1", "pi_1", 2500, "eur", models.IntentSucceeded, true)
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)

	var saved *models.Order
	for _, call := range store.Calls {
		if call.Method == "SaveOrder" {
			saved = call.Arguments.Get(0).(*models.Order)
		}
	}
	require.NotNil(t, saved)
	assert.Equal(t, orderID, saved.OrderID)
	assert.Equal(t, models.OrderPaid, saved.Status)
	assert.Equal(t, int64(2500), saved.AmountMinor)
	assert.Equal(t, "eur", saved.Currency)
}

func TestRecordConfirmedOrder_PromotesPendingOrder(t *testing.T) {
	pending := &models.Order{
		OrderID:     "order_pre",
		CustomerID:  "cus_1",
		IntentID:    "pi_1",
		Status:      models.OrderPending,
		AmountMinor: 2500,
		Currency:    "eur",
		CreatedAt:   time.Now().Add(-time.Minute),
	}

	store := new(MockStore)
	store.On("GetOrderByIntentID", "pi_1").Return(pending, nil)
	store.On("UpdateOrder", mock.AnythingOfType("*models.Order")).Return(nil)

	svc := newTestCheckoutService(t, store)

	orderID, err := svc.RecordConfirmedOrder(context.Background(), "cus_1", "pi_1", 2500, "eur", models.IntentSucceeded, true)
	require.NoError(t, err)
	assert.Equal(t, "order_pre", orderID, "the pre-created order is promoted, not duplicated")
	assert.Equal(t, models.OrderPaid, pending.Status)
	store.AssertNotCalled(t, "SaveOrder", mock.Anything)
}

func TestRecordConfirmedOrder_NoOrderOnFailure(t *testing.T) {
	store := new(MockStore)

	svc := newTestCheckoutService(t, store)

	orderID, err := svc.RecordConfirmedOrder(context.Background(), "cus_1", "pi_1", 2500, "eur", models.IntentRequiresPaymentMethod, false)
	require.NoError(t, err)
	assert.Empty(t, orderID, "order id is only populated on success")
	store.AssertNotCalled(t, "SaveOrder", mock.Anything)
	store.AssertNotCalled(t, "UpdateOrder", mock.Anything)
}

func TestGetOrder_NotFound(t *testing.T) {
	store := new(MockStore)
	store.On("GetOrder", "missing").Return(nil, assert.AnError)

	svc := newTestCheckoutService(t, store)

	_, err := svc.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestProcessOrderEvent_CreatesPendingOrder(t *testing.T) {
	store := new(MockStore)
	store.On("GetOrder", "order_evt").Return(nil, assert.AnError)
	store.On("SaveOrder", mock.AnythingOfType("*models.Order")).Return(nil)

	svc := newTestCheckoutService(t, store)

	err := svc.ProcessOrderEvent(&models.OrderEvent{
		OrderID:     "order_evt",
		CustomerID:  "cus_1",
		AmountMinor: 9900,
		Currency:    "eur",
	})
	require.NoError(t, err)

	var saved *models.Order
	for _, call := range store.Calls {
		if call.Method == "SaveOrder" {
			saved = call.Arguments.Get(0).(*models.Order)
		}
	}
	require.NotNil(t, saved)
	assert.Equal(t, models.OrderPending, saved.Status)
	assert.Equal(t, int64(9900), saved.AmountMinor)
}

func TestProcessOrderEvent_SkipsExistingOrder(t *testing.T) {
	store := new(MockStore)
	store.On("GetOrder", "order_evt").Return(&models.Order{OrderID: "order_evt"}, nil)

	svc := newTestCheckoutService(t, store)

	err := svc.ProcessOrderEvent(&models.OrderEvent{OrderID: "order_evt"})
	require.NoError(t, err)
	store.AssertNotCalled(t, "SaveOrder", mock.Anything)
}

func TestCustomerForSession_CreatesLazily(t *testing.T) {
	store := new(MockStore)
	store.On("GetCustomer", "cus_new").Return(nil, assert.AnError)
	store.On("SaveCustomer", mock.AnythingOfType("*models.Customer")).Return(nil)

	svc := newTestCheckoutService(t, store)

	customer, err := svc.CustomerForSession(context.Background(), "cus_new", "shopper@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cus_new", customer.CustomerID)
	assert.Equal(t, "shopper@example.com", customer.Email)
	store.AssertCalled(t, "SaveCustomer", mock.AnythingOfType("*models.Customer"))
}

func TestCustomerForSession_ReturnsExisting(t *testing.T) {
	existing := &models.Customer{CustomerID: "cus_1", Email: "a@b.c", StripeCustomerID: "cus_stripe"}
	store := new(MockStore)
	store.On("GetCustomer", "cus_1").Return(existing, nil)

	svc := newTestCheckoutService(t, store)

	customer, err := svc.CustomerForSession(context.Background(), "cus_1", "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "cus_stripe", customer.StripeCustomerID)
	store.AssertNotCalled(t, "SaveCustomer", mock.Anything)
}

func TestBindStripeCustomer(t *testing.T) {
	existing := &models.Customer{CustomerID: "cus_1", Email: "a@b.c"}
	store := new(MockStore)
	store.On("GetCustomer", "cus_1").Return(existing, nil)
	store.On("UpdateCustomer", mock.AnythingOfType("*models.Customer")).Return(nil)

	svc := newTestCheckoutService(t, store)

	require.NoError(t, svc.BindStripeCustomer(context.Background(), "cus_1", "cus_stripe_9"))
	assert.Equal(t, "cus_stripe_9", existing.StripeCustomerID)

	store2 := new(MockStore)
	store2.On("GetCustomer", "cus_gone").Return(nil, assert.AnError)
	svc2 := newTestCheckoutService(t, store2)
	assert.ErrorIs(t, svc2.BindStripeCustomer(context.Background(), "cus_gone", "x"), ErrCustomerNotFound)
}
