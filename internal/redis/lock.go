package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed claim locking in Redis. It guards the
// driver allocation across service instances; within one instance the trip
// engine's keyed mutexes already serialize claims.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireClaimLock attempts to acquire the claim lock for a driver.
// Returns true if the lock was acquired, false if another instance holds it.
func (s *LockStore) AcquireClaimLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("claim:driver:%s", driverID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseClaimLock releases the claim lock for a driver.
func (s *LockStore) ReleaseClaimLock(ctx context.Context, driverID string) error {
	key := fmt.Sprintf("claim:driver:%s", driverID)

	return s.client.Del(ctx, key).Err()
}
