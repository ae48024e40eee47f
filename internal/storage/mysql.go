package storage

import (
	"database/sql"
	"fmt"

	"checkout-gateway/internal/config"
	"checkout-gateway/internal/logger"
	"checkout-gateway/internal/models"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLStore struct {
	db  *sql.DB
	log *logger.Logger
}

func NewMySQLStore(cfg config.DatabaseConfig, log *logger.Logger) (*MySQLStore, error) {
	log.LogDatabase("CONNECT", "mysql", fmt.Sprintf("Connecting to MySQL at %s:%s", cfg.Host, cfg.Port))

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Error("DATABASE", "Failed to open MySQL connection: "+err.Error())
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	// Test connection
	if err := db.Ping(); err != nil {
		log.Error("DATABASE", "Failed to ping MySQL: "+err.Error())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &MySQLStore{
		db:  db,
		log: log,
	}

	if err := store.initTables(); err != nil {
		log.Error("DATABASE", "Failed to initialize tables: "+err.Error())
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	log.LogDatabase("SUCCESS", "mysql", "MySQL connection established and tables initialized")
	return store, nil
}

func (s *MySQLStore) initTables() error {
	s.log.LogDatabase("MIGRATE", "mysql", "Creating checkout tables if not exist")

	ordersQuery := `
    CREATE TABLE IF NOT EXISTS orders (
        order_id VARCHAR(64) PRIMARY KEY,
        customer_id VARCHAR(64) NOT NULL,
        intent_id VARCHAR(64) NOT NULL DEFAULT '',
        status VARCHAR(32) NOT NULL,
        amount_minor BIGINT NOT NULL,
        currency VARCHAR(8) NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        INDEX idx_customer_id (customer_id),
        INDEX idx_intent_id (intent_id),
        INDEX idx_status (status)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
    `

	customersQuery := `
    CREATE TABLE IF NOT EXISTS customers (
        customer_id VARCHAR(64) PRIMARY KEY,
        email VARCHAR(255) NOT NULL,
        stripe_customer_id VARCHAR(64) NOT NULL DEFAULT '',
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        INDEX idx_email (email)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
    `

	if _, err := s.db.Exec(ordersQuery); err != nil {
		return fmt.Errorf("failed to create orders table: %w", err)
	}
	if _, err := s.db.Exec(customersQuery); err != nil {
		return fmt.Errorf("failed to create customers table: %w", err)
	}

	s.log.LogDatabase("SUCCESS", "mysql", "Checkout tables ready")
	return nil
}

func (s *MySQLStore) SaveOrder(order *models.Order) error {
	s.log.LogDatabase("INSERT", "mysql", fmt.Sprintf("Saving order %s", order.OrderID))

	query := `
    INSERT INTO orders (
        order_id, customer_id, intent_id, status, amount_minor, currency, created_at, updated_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := s.db.Exec(query,
		order.OrderID, order.CustomerID, order.IntentID, order.Status,
		order.AmountMinor, order.Currency, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save order %s: %s", order.OrderID, err.Error()))
		return fmt.Errorf("failed to save order: %w", err)
	}

	s.log.LogDatabase("SUCCESS", "mysql", fmt.Sprintf("Order %s saved successfully", order.OrderID))
	return nil
}

func (s *MySQLStore) GetOrder(orderID string) (*models.Order, error) {
	s.log.LogDatabase("SELECT", "mysql", fmt.Sprintf("Fetching order %s", orderID))

	query := `
    SELECT order_id, customer_id, intent_id, status, amount_minor, currency, created_at, updated_at
    FROM orders WHERE order_id = ?
    `

	order := &models.Order{}
	err := s.db.QueryRow(query, orderID).Scan(
		&order.OrderID, &order.CustomerID, &order.IntentID, &order.Status,
		&order.AmountMinor, &order.Currency, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			s.log.LogDatabase("NOT_FOUND", "mysql", fmt.Sprintf("Order %s not found", orderID))
			return nil, fmt.Errorf("order not found")
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get order %s: %s", orderID, err.Error()))
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

func (s *MySQLStore) UpdateOrder(order *models.Order) error {
	s.log.LogDatabase("UPDATE", "mysql", fmt.Sprintf("Updating order %s", order.OrderID))

	query := `
    UPDATE orders SET
        customer_id = ?, intent_id = ?, status = ?, amount_minor = ?, currency = ?, updated_at = ?
    WHERE order_id = ?
    `

	_, err := s.db.Exec(query,
		order.CustomerID, order.IntentID, order.Status, order.AmountMinor,
		order.Currency, order.UpdatedAt, order.OrderID,
	)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to update order %s: %s", order.OrderID, err.Error()))
		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}

func (s *MySQLStore) ListOrders(customerID string, limit, offset int) ([]*models.Order, error) {
	s.log.LogDatabase("SELECT", "mysql", fmt.Sprintf("Listing orders for customer %s (limit: %d, offset: %d)", customerID, limit, offset))

	query := `
    SELECT order_id, customer_id, intent_id, status, amount_minor, currency, created_at, updated_at
    FROM orders
    WHERE customer_id = ?
    ORDER BY created_at DESC
    LIMIT ? OFFSET ?
    `

	rows, err := s.db.Query(query, customerID, limit, offset)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to list orders: %s", err.Error()))
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		err := rows.Scan(
			&order.OrderID, &order.CustomerID, &order.IntentID, &order.Status,
			&order.AmountMinor, &order.Currency, &order.CreatedAt, &order.UpdatedAt,
		)
		if err != nil {
			s.log.Error("DATABASE", fmt.Sprintf("Failed to scan order row: %s", err.Error()))
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Row iteration error: %s", err.Error()))
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	s.log.LogDatabase("SUCCESS", "mysql", fmt.Sprintf("Listed %d orders for customer %s", len(orders), customerID))
	return orders, nil
}

func (s *MySQLStore) GetOrderByIntentID(intentID string) (*models.Order, error) {
	s.log.LogDatabase("SELECT", "mysql", fmt.Sprintf("Fetching order for intent %s", intentID))

	query := `
    SELECT order_id, customer_id, intent_id, status, amount_minor, currency, created_at, updated_at
    FROM orders WHERE intent_id = ?
    `

	order := &models.Order{}
	err := s.db.QueryRow(query, intentID).Scan(
		&order.OrderID, &order.CustomerID, &order.IntentID, &order.Status,
		&order.AmountMinor, &order.Currency, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order not found")
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get order for intent %s: %s", intentID, err.Error()))
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

func (s *MySQLStore) SaveCustomer(customer *models.Customer) error {
	s.log.LogDatabase("INSERT", "mysql", fmt.Sprintf("Saving customer %s", customer.CustomerID))

	query := `
    INSERT INTO customers (customer_id, email, stripe_customer_id, created_at)
    VALUES (?, ?, ?, ?)
    `

	_, err := s.db.Exec(query,
		customer.CustomerID, customer.Email, customer.StripeCustomerID, customer.CreatedAt,
	)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save customer %s: %s", customer.CustomerID, err.Error()))
		return fmt.Errorf("failed to save customer: %w", err)
	}

	return nil
}

func (s *MySQLStore) GetCustomer(customerID string) (*models.Customer, error) {
	query := `
    SELECT customer_id, email, stripe_customer_id, created_at
    FROM customers WHERE customer_id = ?
    `

	customer := &models.Customer{}
	err := s.db.QueryRow(query, customerID).Scan(
		&customer.CustomerID, &customer.Email, &customer.StripeCustomerID, &customer.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("customer not found")
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get customer %s: %s", customerID, err.Error()))
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

func (s *MySQLStore) UpdateCustomer(customer *models.Customer) error {
	query := `
    UPDATE customers SET email = ?, stripe_customer_id = ? WHERE customer_id = ?
    `

	_, err := s.db.Exec(query, customer.Email, customer.StripeCustomerID, customer.CustomerID)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to update customer %s: %s", customer.CustomerID, err.Error()))
		return fmt.Errorf("failed to update customer: %w", err)
	}

	return nil
}

func (s *MySQLStore) Close() error {
	s.log.LogDatabase("CLOSE", "mysql", "Closing MySQL connection")
	return s.db.Close()
}

func (s *MySQLStore) HealthCheck() error {
	return s.db.Ping()
}
