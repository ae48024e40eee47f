package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct {
	Client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{Client: client}
}

const (
	// A checkout session holds at most one active intent; re-entering
	// checkout replaces it.
	activeIntentTTL = 24 * time.Hour

	// Confirm locks only need to outlive one confirmation round trip.
	confirmLockTTL = 2 * time.Minute
)

// SaveActiveIntent records the newest payment intent for a checkout session,
// replacing any predecessor.
func (r *Redis) SaveActiveIntent(ctx context.Context, sessionID, intentID string) error {
	key := "active_intent:" + sessionID
	return r.Client.Set(ctx, key, intentID, activeIntentTTL).Err()
}

// GetActiveIntent returns the current intent id for a session, or empty when
// none is active.
func (r *Redis) GetActiveIntent(ctx context.Context, sessionID string) (string, error) {
	key := "active_intent:" + sessionID
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *Redis) ClearActiveIntent(ctx context.Context, sessionID string) error {
	key := "active_intent:" + sessionID
	return r.Client.Del(ctx, key).Err()
}

// AcquireConfirmLock takes a short-lived exclusive lock on an intent so that
// duplicate in-flight confirmations are rejected. Returns false when another
// confirmation already holds the lock.
func (r *Redis) AcquireConfirmLock(ctx context.Context, intentID string) (bool, error) {
	key := "confirm_lock:" + intentID
	return r.Client.SetNX(ctx, key, "1", confirmLockTTL).Result()
}

func (r *Redis) ReleaseConfirmLock(ctx context.Context, intentID string) error {
	key := "confirm_lock:" + intentID
	return r.Client.Del(ctx, key).Err()
}
