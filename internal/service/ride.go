package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"campusride/internal/domain"
	"campusride/internal/redis"
	"campusride/internal/repository"
)

// RideService handles ride posting, listing, estimation and deletion.
// Membership and seat mutations belong to LifecycleService.
type RideService struct {
	rideRepo   repository.RideRepository
	userRepo   repository.UserRepository
	routing    *RoutingService
	statsCache redis.StatsCacheInterface
}

// NewRideService creates a new RideService.
func NewRideService(
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	routing *RoutingService,
	statsCache redis.StatsCacheInterface,
) *RideService {
	return &RideService{
		rideRepo:   rideRepo,
		userRepo:   userRepo,
		routing:    routing,
		statsCache: statsCache,
	}
}

// EstimateFareRequest contains the parameters for a fare estimate.
type EstimateFareRequest struct {
	SourceLat   float64
	SourceLng   float64
	DestLat     float64
	DestLng     float64
	VehicleType string
}

// EstimateFareResponse is a fare quote together with the route it was
// computed from.
type EstimateFareResponse struct {
	DistanceKm    float64
	DurationMin   int
	RoutingSource string
	Quote         *FareQuote
}

// EstimateFare resolves the route between two coordinates and prices it.
func (s *RideService) EstimateFare(ctx context.Context, req EstimateFareRequest) (*EstimateFareResponse, error) {
	if req.SourceLat == 0 || req.SourceLng == 0 || req.DestLat == 0 || req.DestLng == 0 {
		return nil, ErrMissingCoordinates
	}

	vehicle, err := ValidateVehicleType(req.VehicleType)
	if err != nil {
		return nil, err
	}

	route := s.routing.GetRoute(ctx, req.SourceLat, req.SourceLng, req.DestLat, req.DestLng)

	quote, err := CalculateFare(route.DistanceKm, route.DurationMin, vehicle)
	if err != nil {
		return nil, err
	}

	return &EstimateFareResponse{
		DistanceKm:    route.DistanceKm,
		DurationMin:   route.DurationMin,
		RoutingSource: route.Source,
		Quote:         quote,
	}, nil
}

// CreateRideRequest contains the parameters for posting a ride.
type CreateRideRequest struct {
	CreatedBy      string
	Source         string
	Destination    string
	Date           time.Time
	Time           string
	AvailableSeats int
	VehicleType    string

	// Optional coordinates; when all four are present the pricing snapshot
	// is computed at creation time.
	SourceLat float64
	SourceLng float64
	DestLat   float64
	DestLng   float64
}

// CreateRide validates the request, snapshots pricing if coordinates are
// present and persists the ride.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if req.CreatedBy == "" {
		return nil, ErrInvalidUserID
	}
	if req.Source == "" || req.Destination == "" || req.Date.IsZero() || req.Time == "" || req.AvailableSeats == 0 {
		return nil, ErrMissingRequiredFields
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, ErrInvalidTime
	}

	vehicle, err := ValidateVehicleType(req.VehicleType)
	if err != nil {
		return nil, err
	}
	if req.AvailableSeats < 1 || req.AvailableSeats > vehicle.MaxSeats() {
		return nil, ErrInvalidSeatCount
	}

	// Posting a ride is a driver action; the verification flow itself is
	// handled upstream.
	creator, err := s.userRepo.GetByID(ctx, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	if !creator.DriverVerified {
		return nil, ErrDriverNotVerified
	}

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		Source:         req.Source,
		Destination:    req.Destination,
		SourceLat:      req.SourceLat,
		SourceLng:      req.SourceLng,
		DestLat:        req.DestLat,
		DestLng:        req.DestLng,
		Date:           req.Date,
		Time:           req.Time,
		AvailableSeats: req.AvailableSeats,
		VehicleType:    vehicle,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      time.Now(),
	}

	if ride.HasCoordinates() {
		route := s.routing.GetRoute(ctx, req.SourceLat, req.SourceLng, req.DestLat, req.DestLng)

		quote, err := CalculateFare(route.DistanceKm, route.DurationMin, vehicle)
		if err != nil {
			return nil, err
		}

		ride.DistanceKm = math.Round(route.DistanceKm*10) / 10
		ride.DurationMin = route.DurationMin
		ride.Price = quote.RiderCost
		ride.DriverEarnings = quote.DriverEarnings
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, req.CreatedBy)

	return ride, nil
}

// ListRidesRequest contains the optional listing filters.
type ListRidesRequest struct {
	ActiveOnly  bool
	Source      string
	Destination string
}

// ListRidesResult pairs rides with the users needed to resolve their
// owner/rider references for display.
type ListRidesResult struct {
	Rides []*domain.Ride
	Users map[string]*domain.User
}

// ListRides retrieves rides matching the filters, with referenced users
// resolved.
func (s *RideService) ListRides(ctx context.Context, req ListRidesRequest) (*ListRidesResult, error) {
	filter := repository.RideFilter{
		Source:      req.Source,
		Destination: req.Destination,
	}
	if req.ActiveOnly {
		year, month, day := time.Now().Date()
		filter.ActiveFrom = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}

	rides, err := s.rideRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	users, err := s.resolveUsers(ctx, rides)
	if err != nil {
		return nil, err
	}

	return &ListRidesResult{Rides: rides, Users: users}, nil
}

// GetRide retrieves a single ride with referenced users resolved.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, map[string]*domain.User, error) {
	if rideID == "" {
		return nil, nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, nil, err
	}

	users, err := s.resolveUsers(ctx, []*domain.Ride{ride})
	if err != nil {
		return nil, nil, err
	}

	return ride, users, nil
}

// DeleteRide hard-deletes a ride and all its sub-state. Only the owning
// driver may delete.
func (s *RideService) DeleteRide(ctx context.Context, rideID, actingUserID string) error {
	if rideID == "" {
		return ErrInvalidRideID
	}
	if actingUserID == "" {
		return ErrInvalidUserID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}

	if ride.CreatedBy != actingUserID {
		return ErrNotRideOwner
	}

	if err := s.rideRepo.Delete(ctx, rideID); err != nil {
		return err
	}

	s.invalidateStats(ctx, actingUserID)

	return nil
}

// resolveUsers batch-loads every user referenced by the rides.
func (s *RideService) resolveUsers(ctx context.Context, rides []*domain.Ride) (map[string]*domain.User, error) {
	seen := make(map[string]bool)
	var ids []string

	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, ride := range rides {
		add(ride.CreatedBy)
		for _, id := range ride.PendingRiders {
			add(id)
		}
		for _, id := range ride.Riders {
			add(id)
		}
	}

	return s.userRepo.GetByIDs(ctx, ids)
}

func (s *RideService) invalidateStats(ctx context.Context, driverID string) {
	if s.statsCache == nil {
		return
	}
	_ = s.statsCache.InvalidateDriverStats(ctx, driverID)
}
