package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
// Membership sets live in child tables (ride_pending_riders, ride_riders,
// ride_passengers) with ON DELETE CASCADE, so a ride delete removes all
// sub-state.
type RideRepository struct {
	q  Querier
	db *sql.DB // nil when transaction-scoped
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db, db: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// Transact runs fn inside a database transaction. When the repository is
// already transaction-scoped, fn runs against it directly.
func (r *RideRepository) Transact(ctx context.Context, fn func(repository.RideRepository) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(NewRideRepositoryWithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, source, destination, source_lat, source_lng, dest_lat, dest_lng, ride_date, ride_time, available_seats, vehicle_type, created_by, distance_km, duration_min, price, driver_earnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.Source,
		ride.Destination,
		nullFloat(ride.SourceLat),
		nullFloat(ride.SourceLng),
		nullFloat(ride.DestLat),
		nullFloat(ride.DestLng),
		ride.Date,
		ride.Time,
		ride.AvailableSeats,
		ride.VehicleType,
		ride.CreatedBy,
		ride.DistanceKm,
		ride.DurationMin,
		ride.Price,
		ride.DriverEarnings,
		ride.CreatedAt,
	)

	return err
}

const rideColumns = `id, source, destination, source_lat, source_lng, dest_lat, dest_lng, ride_date, ride_time, available_seats, vehicle_type, created_by, distance_km, duration_min, price, driver_earnings, created_at`

// GetByID retrieves a ride with its membership sets.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate retrieves a ride, locking its row for the duration of the
// surrounding transaction.
func (r *RideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	return r.getByID(ctx, id, true)
}

func (r *RideRepository) getByID(ctx context.Context, id string, forUpdate bool) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadMembership(ctx, []*domain.Ride{ride}); err != nil {
		return nil, err
	}

	return ride, nil
}

// GetAll retrieves rides matching the filter, most recent first.
func (r *RideRepository) GetAll(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides`

	var conditions []string
	var args []any

	if !filter.ActiveFrom.IsZero() {
		args = append(args, filter.ActiveFrom)
		conditions = append(conditions, fmt.Sprintf("ride_date >= $%d AND available_seats > 0", len(args)))
	}
	if filter.Source != "" {
		args = append(args, "%"+filter.Source+"%")
		conditions = append(conditions, fmt.Sprintf("source ILIKE $%d", len(args)))
	}
	if filter.Destination != "" {
		args = append(args, "%"+filter.Destination+"%")
		conditions = append(conditions, fmt.Sprintf("destination ILIKE $%d", len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT 100"

	return r.queryRides(ctx, query, args...)
}

// GetByDriverID retrieves every ride created by the driver.
func (r *RideRepository) GetByDriverID(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE created_by = $1 ORDER BY ride_date DESC, created_at DESC`
	return r.queryRides(ctx, query, driverID)
}

func (r *RideRepository) queryRides(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadMembership(ctx, rides); err != nil {
		return nil, err
	}

	return rides, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var sourceLat, sourceLng, destLat, destLng sql.NullFloat64

	err := row.Scan(
		&ride.ID,
		&ride.Source,
		&ride.Destination,
		&sourceLat,
		&sourceLng,
		&destLat,
		&destLng,
		&ride.Date,
		&ride.Time,
		&ride.AvailableSeats,
		&ride.VehicleType,
		&ride.CreatedBy,
		&ride.DistanceKm,
		&ride.DurationMin,
		&ride.Price,
		&ride.DriverEarnings,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	ride.SourceLat = sourceLat.Float64
	ride.SourceLng = sourceLng.Float64
	ride.DestLat = destLat.Float64
	ride.DestLng = destLng.Float64

	return &ride, nil
}

// loadMembership populates pending riders, riders and passengers for the
// given rides in three batched queries.
func (r *RideRepository) loadMembership(ctx context.Context, rides []*domain.Ride) error {
	if len(rides) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Ride, len(rides))
	ids := make([]string, len(rides))
	for i, ride := range rides {
		byID[ride.ID] = ride
		ids[i] = ride.ID
	}

	rows, err := r.q.QueryContext(ctx,
		`SELECT ride_id, rider_id FROM ride_pending_riders WHERE ride_id = ANY($1) ORDER BY requested_at`,
		pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rideID, riderID string
		if err := rows.Scan(&rideID, &riderID); err != nil {
			return err
		}
		byID[rideID].PendingRiders = append(byID[rideID].PendingRiders, riderID)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.q.QueryContext(ctx,
		`SELECT ride_id, rider_id FROM ride_riders WHERE ride_id = ANY($1) ORDER BY accepted_at`,
		pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rideID, riderID string
		if err := rows.Scan(&rideID, &riderID); err != nil {
			return err
		}
		byID[rideID].Riders = append(byID[rideID].Riders, riderID)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.q.QueryContext(ctx,
		`SELECT ride_id, rider_id, otp, status, picked_up_at, dropped_at, created_at FROM ride_passengers WHERE ride_id = ANY($1) ORDER BY created_at`,
		pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rideID string
		var p domain.Passenger
		var pickedUpAt, droppedAt sql.NullTime
		if err := rows.Scan(&rideID, &p.RiderID, &p.OTP, &p.Status, &pickedUpAt, &droppedAt, &p.CreatedAt); err != nil {
			return err
		}
		p.PickedUpAt = pickedUpAt.Time
		p.DroppedAt = droppedAt.Time
		byID[rideID].Passengers = append(byID[rideID].Passengers, p)
	}
	return rows.Err()
}

// Delete removes a ride; child tables cascade.
func (r *RideRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM rides WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddPendingRider appends a join request.
func (r *RideRepository) AddPendingRider(ctx context.Context, rideID, riderID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO ride_pending_riders (ride_id, rider_id, requested_at) VALUES ($1, $2, $3)`,
		rideID, riderID, time.Now())
	return err
}

// RemovePendingRider removes a join request.
func (r *RideRepository) RemovePendingRider(ctx context.Context, rideID, riderID string) error {
	result, err := r.q.ExecContext(ctx,
		`DELETE FROM ride_pending_riders WHERE ride_id = $1 AND rider_id = $2`,
		rideID, riderID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddRider records an accepted rider.
func (r *RideRepository) AddRider(ctx context.Context, rideID, riderID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO ride_riders (ride_id, rider_id, accepted_at) VALUES ($1, $2, $3)`,
		rideID, riderID, time.Now())
	return err
}

// DecrementSeat conditionally deducts one seat. The available_seats guard in
// the WHERE clause is the authoritative capacity gate: concurrent accepts on
// the last seat resolve to exactly one affected row.
func (r *RideRepository) DecrementSeat(ctx context.Context, rideID string) (bool, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE rides SET available_seats = available_seats - 1 WHERE id = $1 AND available_seats > 0`,
		rideID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

// AddPassenger appends a passenger record.
func (r *RideRepository) AddPassenger(ctx context.Context, rideID string, p domain.Passenger) error {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO ride_passengers (ride_id, rider_id, otp, status, picked_up_at, dropped_at, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rideID, p.RiderID, p.OTP, p.Status, nullTime(p.PickedUpAt), nullTime(p.DroppedAt), createdAt)
	return err
}

// UpdatePassengerStatus transitions a passenger record.
func (r *RideRepository) UpdatePassengerStatus(ctx context.Context, rideID, riderID string, status domain.PassengerStatus, pickedUpAt time.Time) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE ride_passengers SET status = $1, picked_up_at = COALESCE($2, picked_up_at) WHERE ride_id = $3 AND rider_id = $4`,
		status, nullTime(pickedUpAt), rideID, riderID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullFloat(v float64) sql.NullFloat64 {
	if v == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
