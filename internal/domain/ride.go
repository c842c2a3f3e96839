package domain

import "time"

// VehicleType represents the vehicle class of a posted ride.
type VehicleType string

const (
	VehicleTypeCar  VehicleType = "Car"
	VehicleTypeBike VehicleType = "Bike"
)

// MaxSeats returns the maximum seat count a ride of this class may offer.
func (v VehicleType) MaxSeats() int {
	if v == VehicleTypeBike {
		return 1
	}
	return 6
}

// PassengerStatus represents the pickup state of an accepted rider.
type PassengerStatus string

const (
	PassengerStatusConfirmed PassengerStatus = "CONFIRMED"
	PassengerStatusOnboard   PassengerStatus = "ONBOARD"
	PassengerStatusDropped   PassengerStatus = "DROPPED"
	PassengerStatusCancelled PassengerStatus = "CANCELLED"
)

// Passenger is the accepted-rider sub-state of a ride. One record exists per
// accepted rider; the OTP is issued at acceptance and never reused across
// rides.
type Passenger struct {
	RiderID    string
	OTP        string // 4-digit numeric pickup code
	Status     PassengerStatus
	PickedUpAt time.Time // zero until the driver verifies the OTP
	DroppedAt  time.Time
	CreatedAt  time.Time
}

// Ride represents a driver-posted trip offer with fixed capacity and schedule.
type Ride struct {
	ID          string
	Source      string
	Destination string

	// Optional GPS coordinates. Zero values mean the endpoint was posted
	// without coordinates, in which case no fare snapshot is computed.
	SourceLat float64
	SourceLng float64
	DestLat   float64
	DestLng   float64

	Date           time.Time // calendar date of the ride
	Time           string    // wall-clock departure, "HH:MM"
	AvailableSeats int       // seats not yet allocated to an accepted rider
	VehicleType    VehicleType
	CreatedBy      string // owning driver, immutable after creation

	// Pricing snapshot computed once at creation time. Not recomputed even
	// if the rate card changes later.
	DistanceKm     float64
	DurationMin    int
	Price          int // rider cost
	DriverEarnings int

	PendingRiders []string // requested to join, in request order
	Riders        []string // accepted, seat already deducted
	Passengers    []Passenger

	CreatedAt time.Time
}

// HasCoordinates reports whether both endpoints carry GPS coordinates.
func (r *Ride) HasCoordinates() bool {
	return r.SourceLat != 0 && r.SourceLng != 0 && r.DestLat != 0 && r.DestLng != 0
}

// IsPending reports whether the user has an outstanding join request.
func (r *Ride) IsPending(userID string) bool {
	for _, id := range r.PendingRiders {
		if id == userID {
			return true
		}
	}
	return false
}

// HasRider reports whether the user is an accepted rider.
func (r *Ride) HasRider(userID string) bool {
	for _, id := range r.Riders {
		if id == userID {
			return true
		}
	}
	return false
}

// PassengerByRider returns the passenger record for a rider, or nil.
func (r *Ride) PassengerByRider(riderID string) *Passenger {
	for i := range r.Passengers {
		if r.Passengers[i].RiderID == riderID {
			return &r.Passengers[i]
		}
	}
	return nil
}
