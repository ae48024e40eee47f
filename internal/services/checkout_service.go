package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checkout-gateway/internal/kafka"
	"checkout-gateway/internal/logger"
	"checkout-gateway/internal/models"
	"checkout-gateway/internal/storage"
	"checkout-gateway/internal/utils"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer not found")
)

// CheckoutService owns order persistence around the payment lifecycle and
// publishes checkout events.
type CheckoutService struct {
	store    storage.Store
	producer *kafka.Producer
	log      *logger.Logger
}

func NewCheckoutService(store storage.Store, producer *kafka.Producer, log *logger.Logger) *CheckoutService {
	return &CheckoutService{
		store:    store,
		producer: producer,
		log:      log,
	}
}

// RecordConfirmedOrder persists the outcome of a confirmed payment intent.
// On success it returns the order id; an order pre-created by the upstream
// order event is promoted rather than duplicated. On failure no order is
// created and only the failure event is published.
func (s *CheckoutService) RecordConfirmedOrder(ctx context.Context, customerID, intentID string, amount int64, currency string, status models.IntentStatus, success bool) (string, error) {
	if !success {
		s.publishCheckoutEvent("payment.failed", &models.Order{
			CustomerID:  customerID,
			IntentID:    intentID,
			Status:      models.OrderFailed,
			AmountMinor: amount,
			Currency:    currency,
		})
		return "", nil
	}

	now := time.Now()

	existing, err := s.store.GetOrderByIntentID(intentID)
	if err == nil && existing != nil {
		existing.Status = models.OrderPaid
		existing.UpdatedAt = now
		if err := s.store.UpdateOrder(existing); err != nil {
			s.log.Error("ORDER", fmt.Sprintf("Failed to update order %s: %v", existing.OrderID, err))
			return "", fmt.Errorf("failed to update order: %w", err)
		}
		s.log.LogPayment("ORDER_PAID", existing.OrderID, "Existing order promoted to paid")
		s.publishCheckoutEvent("checkout.completed", existing)
		return existing.OrderID, nil
	}

	order := &models.Order{
		OrderID:     utils.GenerateOrderID(),
		CustomerID:  customerID,
		IntentID:    intentID,
		Status:      models.OrderPaid,
		AmountMinor: amount,
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.SaveOrder(order); err != nil {
		s.log.Error("ORDER", fmt.Sprintf("Failed to save order %s: %v", order.OrderID, err))
		return "", fmt.Errorf("failed to save order: %w", err)
	}

	s.log.LogDatabase("SAVE", "orders", fmt.Sprintf("Order %s recorded for intent %s", order.OrderID, intentID))
	s.publishCheckoutEvent("checkout.completed", order)
	return order.OrderID, nil
}

func (s *CheckoutService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.store.GetOrder(orderID)
	if err != nil {
		s.log.LogPayment("NOT_FOUND", orderID, "Order not found in storage")
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *CheckoutService) ListOrders(ctx context.Context, customerID string, limit, offset int) ([]*models.Order, error) {
	return s.store.ListOrders(customerID, limit, offset)
}

// ProcessOrderEvent handles upstream order.created events by pre-creating a
// pending order row ahead of payment confirmation.
func (s *CheckoutService) ProcessOrderEvent(event *models.OrderEvent) error {
	s.log.LogKafka("ORDER_RECEIVED", "order.created", fmt.Sprintf("Processing order %s", event.OrderID))

	existing, err := s.store.GetOrder(event.OrderID)
	if err == nil && existing != nil {
		s.log.Warn("KAFKA", fmt.Sprintf("Order %s already exists, skipping", event.OrderID))
		return nil
	}

	order := &models.Order{
		OrderID:     event.OrderID,
		CustomerID:  event.CustomerID,
		Status:      models.OrderPending,
		AmountMinor: event.AmountMinor,
		Currency:    event.Currency,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.store.SaveOrder(order); err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save order %s: %v", event.OrderID, err))
		return fmt.Errorf("failed to save order: %w", err)
	}

	s.log.LogDatabase("SAVE", "orders", fmt.Sprintf("Pending order %s created", event.OrderID))
	return nil
}

// CustomerForSession resolves the stored customer record, creating it when
// the session has never touched a payment flow before.
func (s *CheckoutService) CustomerForSession(ctx context.Context, customerID, email string) (*models.Customer, error) {
	customer, err := s.store.GetCustomer(customerID)
	if err == nil && customer != nil {
		return customer, nil
	}

	customer = &models.Customer{
		CustomerID: customerID,
		Email:      email,
		CreatedAt:  time.Now(),
	}
	if err := s.store.SaveCustomer(customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}
	s.log.LogDatabase("SAVE", "customers", fmt.Sprintf("Customer %s created", customerID))
	return customer, nil
}

// BindStripeCustomer persists the lazily created Stripe customer id.
func (s *CheckoutService) BindStripeCustomer(ctx context.Context, customerID, stripeCustomerID string) error {
	customer, err := s.store.GetCustomer(customerID)
	if err != nil {
		return ErrCustomerNotFound
	}
	customer.StripeCustomerID = stripeCustomerID
	if err := s.store.UpdateCustomer(customer); err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

func (s *CheckoutService) publishCheckoutEvent(eventType string, order *models.Order) {
	event := &models.CheckoutEvent{
		Type:      eventType,
		OrderID:   order.OrderID,
		Order:     order,
		Timestamp: time.Now(),
	}

	if err := s.producer.PublishCheckoutEvent(event); err != nil {
		s.log.Error("KAFKA", fmt.Sprintf("Failed to publish %s event for order %s: %v", eventType, order.OrderID, err))
		s.log.LogProcess("FALLBACK", fmt.Sprintf("Order %s processed despite Kafka publish failure", order.OrderID))
	} else {
		s.log.LogKafka("PUBLISHED", "checkout-events", fmt.Sprintf("Published %s event for order %s", eventType, order.OrderID))
	}
}
