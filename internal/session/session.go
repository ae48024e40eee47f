package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// Version is bumped whenever Record changes shape. Loads of an older version
// are treated as missing so a stale record can never leak into a new flow.
const Version = 1

var ErrNotFound = errors.New("session not found")

// Record is the serializable per-session state: the authenticated storefront
// customer and, once a payment flow has touched Stripe, the processor-side
// customer id it maps to.
type Record struct {
	Version          int       `json:"version"`
	SessionID        string    `json:"session_id"`
	CustomerID       string    `json:"customer_id"`
	Email            string    `json:"email"`
	StripeCustomerID string    `json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Store persists session records in Redis under the session cookie id.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(sessionID string) string {
	return "session:" + sessionID
}

func (s *Store) Load(ctx context.Context, sessionID string) (*Record, error) {
	data, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, ErrNotFound
	}
	if rec.Version != Version {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *Store) Save(ctx context.Context, rec *Record) error {
	rec.Version = Version
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(rec.SessionID), data, s.ttl).Err()
}

// Invalidate is the logout transition: the record is removed outright rather
// than flagged.
func (s *Store) Invalidate(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, key(sessionID)).Err()
}
