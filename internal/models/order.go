package models

import (
	"time"

	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID     string      `json:"orderId" bun:"order_id,pk"`
	CustomerID  string      `json:"customerId" bun:"customer_id"`
	IntentID    string      `json:"intentId" bun:"intent_id"`
	Status      OrderStatus `json:"status" bun:"status"`
	AmountMinor int64       `json:"amount" bun:"amount_minor"`
	Currency    string      `json:"currency" bun:"currency"`
	CreatedAt   time.Time   `json:"createdAt" bun:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" bun:"updated_at"`
}

// Customer links a storefront account to its payment-processor customer
// object. The stripe id is created lazily on the first payment touch.
type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	CustomerID       string    `json:"customerId" bun:"customer_id,pk"`
	Email            string    `json:"email" bun:"email"`
	StripeCustomerID string    `json:"-" bun:"stripe_customer_id"`
	CreatedAt        time.Time `json:"createdAt" bun:"created_at"`
}

// CheckoutEvent is published to Kafka when a checkout settles.
type CheckoutEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	Order     *Order    `json:"order"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderEvent arrives from the upstream order topic; a pending order row is
// created for it ahead of payment confirmation.
type OrderEvent struct {
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	AmountMinor int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
