package tests

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"campusride/internal/domain"
	"campusride/internal/redis"
	"campusride/internal/service"
)

// ──────────────────────────────────────────────
// 5. DRIVER EARNINGS STATS
// ──────────────────────────────────────────────

func addEarningRide(repo *MockRideRepository, id, driverID string, date time.Time, earnings int) {
	repo.AddRide(&domain.Ride{
		ID:             id,
		CreatedBy:      driverID,
		Date:           date,
		DriverEarnings: earnings,
	})
}

func TestDriverStats_GroupsByDayWeekAndMonth(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()

	// December 30 2024 belongs to ISO week 1 of 2025, same week as Jan 1.
	addEarningRide(rideRepo, "r1", "driver-1", time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), 100)
	addEarningRide(rideRepo, "r2", "driver-1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 50)
	addEarningRide(rideRepo, "r3", "driver-1", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), 80)
	addEarningRide(rideRepo, "other", "driver-2", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), 999)

	statsService := service.NewStatsService(rideRepo, nil)

	stats, err := statsService.GetDriverStats(context.Background(), "driver-1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalRides != 3 {
		t.Errorf("expected 3 rides, got %d", stats.TotalRides)
	}
	if stats.TotalEarnings != 230 {
		t.Errorf("expected total earnings 230, got %d", stats.TotalEarnings)
	}

	wantDaily := map[string]int{"2024-12-30": 100, "2025-01-01": 50, "2025-01-06": 80}
	for key, want := range wantDaily {
		if got := stats.DailyEarnings[key]; got != want {
			t.Errorf("daily %s: expected %d, got %d", key, want, got)
		}
	}

	wantMonthly := map[string]int{"2024-12": 100, "2025-01": 130}
	for key, want := range wantMonthly {
		if got := stats.MonthlyEarnings[key]; got != want {
			t.Errorf("monthly %s: expected %d, got %d", key, want, got)
		}
	}

	wantWeekly := map[string]int{"2025-W01": 150, "2025-W02": 80}
	if len(stats.WeeklyEarnings) != len(wantWeekly) {
		t.Errorf("expected %d weekly buckets, got %v", len(wantWeekly), stats.WeeklyEarnings)
	}
	for key, want := range wantWeekly {
		if got := stats.WeeklyEarnings[key]; got != want {
			t.Errorf("weekly %s: expected %d, got %d", key, want, got)
		}
	}

	if stats.Rides != nil {
		t.Error("ride list must be omitted unless requested")
	}
}

func TestDriverStats_RideListCappedButTotalsComplete(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		addEarningRide(rideRepo, fmt.Sprintf("r%02d", i), "driver-1", base.AddDate(0, 0, i), 10)
	}

	statsService := service.NewStatsService(rideRepo, nil)

	stats, err := statsService.GetDriverStats(context.Background(), "driver-1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalRides != 60 {
		t.Errorf("expected 60 total rides, got %d", stats.TotalRides)
	}
	if stats.TotalEarnings != 600 {
		t.Errorf("totals must cover the full set: expected 600, got %d", stats.TotalEarnings)
	}
	if len(stats.Rides) != 50 {
		t.Fatalf("expected ride list capped at 50, got %d", len(stats.Rides))
	}

	// Most recent first.
	for i := 1; i < len(stats.Rides); i++ {
		if stats.Rides[i].Date.After(stats.Rides[i-1].Date) {
			t.Fatalf("ride list not sorted most recent first at index %d", i)
		}
	}
	if !stats.Rides[0].Date.Equal(base.AddDate(0, 0, 59)) {
		t.Errorf("expected the newest ride first, got %v", stats.Rides[0].Date)
	}
}

func TestDriverStats_ServedFromCacheWhenFresh(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository() // deliberately empty
	cache := NewMockStatsCache()
	cache.SetDriverStats(context.Background(), "driver-1", &redis.CachedDriverStats{
		TotalRides:    5,
		TotalEarnings: 500,
		DailyEarnings: map[string]int{"2025-01-01": 500},
	})
	cache.SetCallCount = 0

	statsService := service.NewStatsService(rideRepo, cache)

	stats, err := statsService.GetDriverStats(context.Background(), "driver-1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The cached summary wins over the (empty) repository.
	if stats.TotalRides != 5 || stats.TotalEarnings != 500 {
		t.Errorf("expected cached totals 5/500, got %d/%d", stats.TotalRides, stats.TotalEarnings)
	}
	if cache.SetCallCount != 0 {
		t.Error("a cache hit must not rewrite the cache")
	}
}

func TestDriverStats_CachePopulatedOnMiss(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	cache := NewMockStatsCache()
	addEarningRide(rideRepo, "r1", "driver-1", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), 120)

	statsService := service.NewStatsService(rideRepo, cache)

	if _, err := statsService.GetDriverStats(context.Background(), "driver-1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cache.SetCallCount != 1 {
		t.Errorf("expected the summary cached after a miss, got %d sets", cache.SetCallCount)
	}

	cached, _ := cache.GetDriverStats(context.Background(), "driver-1")
	if cached == nil || cached.TotalEarnings != 120 {
		t.Errorf("unexpected cached summary: %+v", cached)
	}
}

func TestDriverStats_RideListRequestSkipsCache(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	cache := NewMockStatsCache()
	cache.SetDriverStats(context.Background(), "driver-1", &redis.CachedDriverStats{TotalRides: 99})
	cache.GetCallCount = 0

	addEarningRide(rideRepo, "r1", "driver-1", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), 75)

	statsService := service.NewStatsService(rideRepo, cache)

	stats, err := statsService.GetDriverStats(context.Background(), "driver-1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cache.GetCallCount != 0 {
		t.Error("the detailed form must bypass the cache read")
	}
	if stats.TotalRides != 1 || len(stats.Rides) != 1 {
		t.Errorf("expected repository-backed stats, got %d rides", stats.TotalRides)
	}
}

func TestDriverStats_RequiresDriverID(t *testing.T) {
	t.Parallel()

	statsService := service.NewStatsService(NewMockRideRepository(), nil)

	_, err := statsService.GetDriverStats(context.Background(), "", false)
	if !errors.Is(err, service.ErrInvalidUserID) {
		t.Errorf("expected ErrInvalidUserID, got %v", err)
	}
}
