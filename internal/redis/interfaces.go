package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed claim locking.
type LockStoreInterface interface {
	AcquireClaimLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error)
	ReleaseClaimLock(ctx context.Context, driverID string) error
}

// Ensure concrete types implement interfaces.
var _ LockStoreInterface = (*LockStore)(nil)
