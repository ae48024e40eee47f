package storage

import (
	"fmt"
	"sort"
	"sync"

	"checkout-gateway/internal/models"
)

// InMemoryStore keeps orders and customers in process memory. It backs
// tests and local development when MySQL is not available.
type InMemoryStore struct {
	mu        sync.RWMutex
	orders    map[string]*models.Order
	customers map[string]*models.Customer
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		orders:    make(map[string]*models.Order),
		customers: make(map[string]*models.Customer),
	}
}

func (s *InMemoryStore) SaveOrder(order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *order
	s.orders[order.OrderID] = &cp
	return nil
}

func (s *InMemoryStore) GetOrder(orderID string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order not found")
	}
	cp := *order
	return &cp, nil
}

func (s *InMemoryStore) UpdateOrder(order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.OrderID]; !ok {
		return fmt.Errorf("order not found")
	}
	cp := *order
	s.orders[order.OrderID] = &cp
	return nil
}

func (s *InMemoryStore) ListOrders(customerID string, limit, offset int) ([]*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Order
	for _, order := range s.orders {
		if order.CustomerID == customerID {
			cp := *order
			matched = append(matched, &cp)
		}
	}

	// Newest first, matching the MySQL ordering
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *InMemoryStore) GetOrderByIntentID(intentID string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, order := range s.orders {
		if order.IntentID == intentID {
			cp := *order
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("order not found")
}

func (s *InMemoryStore) SaveCustomer(customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *customer
	s.customers[customer.CustomerID] = &cp
	return nil
}

func (s *InMemoryStore) GetCustomer(customerID string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("customer not found")
	}
	cp := *customer
	return &cp, nil
}

func (s *InMemoryStore) UpdateCustomer(customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customer.CustomerID]; !ok {
		return fmt.Errorf("customer not found")
	}
	cp := *customer
	s.customers[customer.CustomerID] = &cp
	return nil
}
