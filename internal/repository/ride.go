package repository

import (
	"context"
	"time"

	"campusride/internal/domain"
)

// RideFilter narrows the ride listing.
type RideFilter struct {
	// ActiveFrom, when non-zero, keeps only rides dated on or after it that
	// still have seats available.
	ActiveFrom time.Time

	// Source and Destination are case-insensitive substring matches.
	Source      string
	Destination string
}

// RideRepository defines the persistence operations for rides and their
// membership sub-state. The lifecycle service is the only component that
// mutates membership or seat counts.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride with its membership sets.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetByIDForUpdate retrieves a ride, locking its row for the duration
	// of the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error)

	// GetAll retrieves rides matching the filter, most recent first.
	GetAll(ctx context.Context, filter RideFilter) ([]*domain.Ride, error)

	// GetByDriverID retrieves every ride created by the driver.
	GetByDriverID(ctx context.Context, driverID string) ([]*domain.Ride, error)

	// Delete removes a ride and all its sub-state.
	Delete(ctx context.Context, id string) error

	// AddPendingRider appends a join request.
	AddPendingRider(ctx context.Context, rideID, riderID string) error

	// RemovePendingRider removes a join request.
	RemovePendingRider(ctx context.Context, rideID, riderID string) error

	// AddRider records an accepted rider.
	AddRider(ctx context.Context, rideID, riderID string) error

	// DecrementSeat conditionally deducts one seat. It reports false when
	// no seat was available; the ride is left untouched in that case.
	DecrementSeat(ctx context.Context, rideID string) (bool, error)

	// AddPassenger appends a passenger record.
	AddPassenger(ctx context.Context, rideID string, p domain.Passenger) error

	// UpdatePassengerStatus transitions a passenger record and stamps the
	// pickup time when non-zero.
	UpdatePassengerStatus(ctx context.Context, rideID, riderID string, status domain.PassengerStatus, pickedUpAt time.Time) error

	// Transact runs fn against a repository whose operations are applied as
	// a single atomic unit relative to other writers of the same rides.
	Transact(ctx context.Context, fn func(RideRepository) error) error
}
