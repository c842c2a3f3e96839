package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusride/internal/domain"
	"campusride/internal/repository"
	"campusride/internal/service"
)

// ──────────────────────────────────────────────
// 3. RIDE POSTING AND LISTING
// ──────────────────────────────────────────────

// offlineRouting returns a routing service whose live endpoint is
// unreachable, so every route resolves to the deterministic fallback.
func offlineRouting() *service.RoutingService {
	return service.NewRoutingService("http://127.0.0.1:1", 100*time.Millisecond)
}

func verifiedDriver(id string) *domain.User {
	return &domain.User{
		ID:             id,
		Name:           "Driver " + id,
		Email:          id + "@campus.edu",
		DriverVerified: true,
	}
}

func TestCreateRide_SnapshotsPricingFromCoordinates(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	statsCache := NewMockStatsCache()
	userRepo.AddUser(verifiedDriver("driver-1"))

	rideService := service.NewRideService(rideRepo, userRepo, offlineRouting(), statsCache)

	ride, err := rideService.CreateRide(context.Background(), service.CreateRideRequest{
		CreatedBy:      "driver-1",
		Source:         "Campus Gate",
		Destination:    "Indiranagar",
		Date:           time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Time:           "08:30",
		AvailableSeats: 3,
		VehicleType:    "Car",
		SourceLat:      blrLat,
		SourceLng:      blrLng,
		DestLat:        hopLat,
		DestLng:        hopLng,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.ID == "" {
		t.Error("expected a generated ride ID")
	}

	// The short hop resolves to the 2.02km/4min fallback estimate. The fare
	// is computed from the unrounded route distance; the stored distance is
	// rounded to one decimal.
	if ride.DistanceKm != 2.0 {
		t.Errorf("expected stored distance 2.0, got %.2f", ride.DistanceKm)
	}
	if ride.DurationMin != 4 {
		t.Errorf("expected duration 4, got %d", ride.DurationMin)
	}
	if ride.Price != 88 {
		t.Errorf("expected price 88, got %d", ride.Price)
	}
	if ride.DriverEarnings != 70 {
		t.Errorf("expected driver earnings 70, got %d", ride.DriverEarnings)
	}

	stored, err := rideRepo.GetByID(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("ride not persisted: %v", err)
	}
	if stored.AvailableSeats != 3 {
		t.Errorf("expected 3 seats, got %d", stored.AvailableSeats)
	}

	if statsCache.InvalidateCallCount != 1 {
		t.Errorf("expected stats cache invalidation, got %d calls", statsCache.InvalidateCallCount)
	}
}

func TestCreateRide_NoCoordinatesSkipsSnapshot(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	userRepo.AddUser(verifiedDriver("driver-1"))

	rideService := service.NewRideService(rideRepo, userRepo, offlineRouting(), nil)

	ride, err := rideService.CreateRide(context.Background(), service.CreateRideRequest{
		CreatedBy:      "driver-1",
		Source:         "Campus Gate",
		Destination:    "Railway Station",
		Date:           time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Time:           "17:00",
		AvailableSeats: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Price != 0 || ride.DriverEarnings != 0 || ride.DistanceKm != 0 {
		t.Errorf("expected no pricing snapshot, got price=%d earnings=%d distance=%.2f",
			ride.Price, ride.DriverEarnings, ride.DistanceKm)
	}
	if ride.VehicleType != domain.VehicleTypeCar {
		t.Errorf("expected default vehicle type Car, got %s", ride.VehicleType)
	}
}

func TestCreateRide_ValidationFailures(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	userRepo.AddUser(verifiedDriver("driver-1"))
	userRepo.AddUser(&domain.User{ID: "student-1", Name: "Student", DriverVerified: false})

	rideService := service.NewRideService(rideRepo, userRepo, offlineRouting(), nil)

	valid := service.CreateRideRequest{
		CreatedBy:      "driver-1",
		Source:         "Campus Gate",
		Destination:    "Airport",
		Date:           time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Time:           "06:00",
		AvailableSeats: 4,
		VehicleType:    "Car",
	}

	tests := []struct {
		name    string
		mutate  func(*service.CreateRideRequest)
		wantErr error
	}{
		{"missing source", func(r *service.CreateRideRequest) { r.Source = "" }, service.ErrMissingRequiredFields},
		{"missing destination", func(r *service.CreateRideRequest) { r.Destination = "" }, service.ErrMissingRequiredFields},
		{"missing date", func(r *service.CreateRideRequest) { r.Date = time.Time{} }, service.ErrMissingRequiredFields},
		{"missing seats", func(r *service.CreateRideRequest) { r.AvailableSeats = 0 }, service.ErrMissingRequiredFields},
		{"malformed time", func(r *service.CreateRideRequest) { r.Time = "8.30am" }, service.ErrInvalidTime},
		{"unknown vehicle", func(r *service.CreateRideRequest) { r.VehicleType = "Truck" }, service.ErrInvalidVehicleType},
		{"too many car seats", func(r *service.CreateRideRequest) { r.AvailableSeats = 7 }, service.ErrInvalidSeatCount},
		{"bike carries one pillion", func(r *service.CreateRideRequest) {
			r.VehicleType = "Bike"
			r.AvailableSeats = 2
		}, service.ErrInvalidSeatCount},
		{"negative seats", func(r *service.CreateRideRequest) { r.AvailableSeats = -1 }, service.ErrInvalidSeatCount},
		{"missing creator", func(r *service.CreateRideRequest) { r.CreatedBy = "" }, service.ErrInvalidUserID},
		{"unverified driver", func(r *service.CreateRideRequest) { r.CreatedBy = "student-1" }, service.ErrDriverNotVerified},
		{"unknown creator", func(r *service.CreateRideRequest) { r.CreatedBy = "ghost" }, repository.ErrNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			_, err := rideService.CreateRide(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if rideRepo.CountRides() != 0 {
		t.Errorf("expected no rides persisted, got %d", rideRepo.CountRides())
	}
}

func TestListRides_ActiveFilterHidesFullAndPastRides(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	userRepo.AddUser(verifiedDriver("driver-1"))

	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	lastWeek := time.Now().UTC().AddDate(0, 0, -7)

	rideRepo.AddRide(&domain.Ride{ID: "open", CreatedBy: "driver-1", Source: "Campus Gate", Destination: "Airport", Date: tomorrow, AvailableSeats: 2})
	rideRepo.AddRide(&domain.Ride{ID: "full", CreatedBy: "driver-1", Source: "Campus Gate", Destination: "Airport", Date: tomorrow, AvailableSeats: 0})
	rideRepo.AddRide(&domain.Ride{ID: "past", CreatedBy: "driver-1", Source: "Campus Gate", Destination: "Airport", Date: lastWeek, AvailableSeats: 2})

	rideService := service.NewRideService(rideRepo, userRepo, offlineRouting(), nil)

	result, err := rideService.ListRides(context.Background(), service.ListRidesRequest{ActiveOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Rides) != 1 || result.Rides[0].ID != "open" {
		t.Fatalf("expected only the open ride, got %d rides", len(result.Rides))
	}
	if _, ok := result.Users["driver-1"]; !ok {
		t.Error("expected the owner resolved in the user map")
	}
}

func TestListRides_SourceFilterIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	userRepo.AddUser(verifiedDriver("driver-1"))

	rideRepo.AddRide(&domain.Ride{ID: "r1", CreatedBy: "driver-1", Source: "Campus Gate", Destination: "Airport", AvailableSeats: 2})
	rideRepo.AddRide(&domain.Ride{ID: "r2", CreatedBy: "driver-1", Source: "Hostel Block C", Destination: "Airport", AvailableSeats: 2})

	rideService := service.NewRideService(rideRepo, userRepo, offlineRouting(), nil)

	result, err := rideService.ListRides(context.Background(), service.ListRidesRequest{Source: "campus"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Rides) != 1 || result.Rides[0].ID != "r1" {
		t.Fatalf("expected only the campus ride, got %d rides", len(result.Rides))
	}
}

func TestDeleteRide_OwnerOnly(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	statsCache := NewMockStatsCache()
	rideRepo.AddRide(&domain.Ride{ID: "ride-1", CreatedBy: "driver-1"})

	rideService := service.NewRideService(rideRepo, userRepo, offlineRouting(), statsCache)

	if err := rideService.DeleteRide(context.Background(), "ride-1", "stranger"); !errors.Is(err, service.ErrNotRideOwner) {
		t.Errorf("expected ErrNotRideOwner, got %v", err)
	}
	if rideRepo.CountRides() != 1 {
		t.Fatal("ride should not have been deleted")
	}

	if err := rideService.DeleteRide(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rideRepo.CountRides() != 0 {
		t.Error("ride should have been deleted")
	}
	if statsCache.InvalidateCallCount != 1 {
		t.Errorf("expected stats cache invalidation, got %d calls", statsCache.InvalidateCallCount)
	}

	if err := rideService.DeleteRide(context.Background(), "ride-1", "driver-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestEstimateFare_RequiresCoordinates(t *testing.T) {
	t.Parallel()

	rideService := service.NewRideService(NewMockRideRepository(), NewMockUserRepository(), offlineRouting(), nil)

	_, err := rideService.EstimateFare(context.Background(), service.EstimateFareRequest{
		SourceLat: blrLat, SourceLng: blrLng, // destination missing
	})
	if !errors.Is(err, service.ErrMissingCoordinates) {
		t.Errorf("expected ErrMissingCoordinates, got %v", err)
	}
}

func TestEstimateFare_FallbackEstimate(t *testing.T) {
	t.Parallel()

	rideService := service.NewRideService(NewMockRideRepository(), NewMockUserRepository(), offlineRouting(), nil)

	estimate, err := rideService.EstimateFare(context.Background(), service.EstimateFareRequest{
		SourceLat:   blrLat,
		SourceLng:   blrLng,
		DestLat:     hopLat,
		DestLng:     hopLng,
		VehicleType: "Bike",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if estimate.RoutingSource != service.RouteSourceHaversine {
		t.Errorf("expected fallback source, got %s", estimate.RoutingSource)
	}
	if estimate.DistanceKm != 2.02 || estimate.DurationMin != 4 {
		t.Errorf("expected 2.02km/4min, got %.2fkm/%dmin", estimate.DistanceKm, estimate.DurationMin)
	}

	// Bike: 25 + 2.02*8 + 4*1 = 45.16, rounds to 45. Fee 9, earnings 36.
	if estimate.Quote.RiderCost != 45 {
		t.Errorf("expected rider cost 45, got %d", estimate.Quote.RiderCost)
	}
	if estimate.Quote.DriverEarnings != 36 {
		t.Errorf("expected driver earnings 36, got %d", estimate.Quote.DriverEarnings)
	}
}
