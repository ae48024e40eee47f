package cart

import (
	"sync"
	"time"
)

type Item struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	UnitMinor int64     `json:"unit_minor"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Cart is the one piece of cross-flow shared state in the checkout. Only the
// submission orchestrator clears it, and only on confirmed success.
type Cart struct {
	mu    sync.Mutex
	items []Item
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) Add(item Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity += item.Quantity
			return
		}
	}
	c.items = append(c.items, item)
}

func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// TotalMinorUnits is the cart total as an integer in minor currency units,
// the unit every payment amount uses end to end.
func (c *Cart) TotalMinorUnits() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, item := range c.items {
		total += item.UnitMinor * int64(item.Quantity)
	}
	return total
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}
