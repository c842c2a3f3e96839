package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for per-ride distributed locking.
type LockStoreInterface interface {
	AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleaseRideLock(ctx context.Context, rideID string) error
}

// StatsCacheInterface defines the interface for driver stats caching.
type StatsCacheInterface interface {
	GetDriverStats(ctx context.Context, driverID string) (*CachedDriverStats, error)
	SetDriverStats(ctx context.Context, driverID string, stats *CachedDriverStats) error
	InvalidateDriverStats(ctx context.Context, driverID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ StatsCacheInterface = (*CacheStore)(nil)
)
