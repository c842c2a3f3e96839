package service

import (
	"context"
	"fmt"
	"sort"

	"campusride/internal/domain"
	"campusride/internal/redis"
	"campusride/internal/repository"
)

// statsRideListCap bounds the detailed ride list returned with driver stats.
// The cap keeps payloads small; totals always cover the entire matching set.
const statsRideListCap = 50

// DriverStats summarizes a driver's posted rides and earnings.
type DriverStats struct {
	TotalRides      int
	TotalEarnings   int
	DailyEarnings   map[string]int // keyed YYYY-MM-DD by the ride's scheduled date
	WeeklyEarnings  map[string]int // keyed YYYY-W## (ISO week-year and week)
	MonthlyEarnings map[string]int // keyed YYYY-MM
	Rides           []*domain.Ride // capped, most recent first; nil unless requested
}

// StatsService is the read side summarizing a driver's rides. It never
// mutates ride state.
type StatsService struct {
	rideRepo repository.RideRepository
	cache    redis.StatsCacheInterface
}

// NewStatsService creates a new StatsService. cache may be nil.
func NewStatsService(rideRepo repository.RideRepository, cache redis.StatsCacheInterface) *StatsService {
	return &StatsService{rideRepo: rideRepo, cache: cache}
}

// GetDriverStats aggregates earnings over every ride created by the driver.
// The totals-only form is served from cache when fresh.
func (s *StatsService) GetDriverStats(ctx context.Context, driverID string, includeRides bool) (*DriverStats, error) {
	if driverID == "" {
		return nil, ErrInvalidUserID
	}

	if !includeRides && s.cache != nil {
		cached, err := s.cache.GetDriverStats(ctx, driverID)
		if err == nil && cached != nil {
			return &DriverStats{
				TotalRides:      cached.TotalRides,
				TotalEarnings:   cached.TotalEarnings,
				DailyEarnings:   cached.DailyEarnings,
				WeeklyEarnings:  cached.WeeklyEarnings,
				MonthlyEarnings: cached.MonthlyEarnings,
			}, nil
		}
	}

	rides, err := s.rideRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	stats := &DriverStats{
		TotalRides:      len(rides),
		DailyEarnings:   make(map[string]int),
		WeeklyEarnings:  make(map[string]int),
		MonthlyEarnings: make(map[string]int),
	}

	for _, ride := range rides {
		earnings := ride.DriverEarnings
		stats.TotalEarnings += earnings

		dayKey := ride.Date.Format("2006-01-02")
		stats.DailyEarnings[dayKey] += earnings
		stats.MonthlyEarnings[dayKey[:7]] += earnings

		isoYear, isoWeek := ride.Date.ISOWeek()
		stats.WeeklyEarnings[fmt.Sprintf("%d-W%02d", isoYear, isoWeek)] += earnings
	}

	if s.cache != nil {
		_ = s.cache.SetDriverStats(ctx, driverID, &redis.CachedDriverStats{
			TotalRides:      stats.TotalRides,
			TotalEarnings:   stats.TotalEarnings,
			DailyEarnings:   stats.DailyEarnings,
			WeeklyEarnings:  stats.WeeklyEarnings,
			MonthlyEarnings: stats.MonthlyEarnings,
		})
	}

	if includeRides {
		sort.SliceStable(rides, func(i, j int) bool {
			return rides[i].Date.After(rides[j].Date)
		})
		if len(rides) > statsRideListCap {
			rides = rides[:statsRideListCap]
		}
		stats.Rides = rides
	}

	return stats, nil
}
