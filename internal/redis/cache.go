package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatsCacheTTL bounds how stale a cached earnings summary may be.
const StatsCacheTTL = 30 * time.Second

const statsCachePrefix = "cache:stats:driver:"

// CachedDriverStats is the cached earnings summary for a driver. The capped
// ride list is never cached; only the full-set totals are.
type CachedDriverStats struct {
	TotalRides      int            `json:"total_rides"`
	TotalEarnings   int            `json:"total_earnings"`
	DailyEarnings   map[string]int `json:"daily_earnings"`
	WeeklyEarnings  map[string]int `json:"weekly_earnings"`
	MonthlyEarnings map[string]int `json:"monthly_earnings"`
}

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// GetDriverStats retrieves a driver's cached stats. Returns nil on cache miss.
func (s *CacheStore) GetDriverStats(ctx context.Context, driverID string) (*CachedDriverStats, error) {
	key := statsCachePrefix + driverID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var stats CachedDriverStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetDriverStats stores a driver's stats in cache.
func (s *CacheStore) SetDriverStats(ctx context.Context, driverID string, stats *CachedDriverStats) error {
	key := statsCachePrefix + driverID
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, StatsCacheTTL).Err()
}

// InvalidateDriverStats removes a driver's stats from cache. Called whenever
// one of the driver's rides is created or deleted.
func (s *CacheStore) InvalidateDriverStats(ctx context.Context, driverID string) error {
	key := statsCachePrefix + driverID
	return s.client.Del(ctx, key).Err()
}
