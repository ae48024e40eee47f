package storage

import (
	"checkout-gateway/internal/models"
)

type Store interface {
	SaveOrder(order *models.Order) error
	GetOrder(orderID string) (*models.Order, error)
	UpdateOrder(order *models.Order) error
	ListOrders(customerID string, limit, offset int) ([]*models.Order, error)
	GetOrderByIntentID(intentID string) (*models.Order, error)

	// Customer records link storefront accounts to Stripe customers.
	SaveCustomer(customer *models.Customer) error
	GetCustomer(customerID string) (*models.Customer, error)
	UpdateCustomer(customer *models.Customer) error
}
