package service

import "errors"

var (
	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidUserID is returned when the acting user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrMissingCoordinates is returned when a fare estimate lacks GPS coordinates.
	ErrMissingCoordinates = errors.New("gps coordinates required")

	// ErrInvalidVehicleType is returned when the vehicle type is not in the closed set.
	ErrInvalidVehicleType = errors.New("invalid vehicle type")

	// ErrInvalidDistance is returned when a fare is requested for a negative distance.
	ErrInvalidDistance = errors.New("distance cannot be negative")

	// ErrInvalidDuration is returned when a fare is requested for a negative duration.
	ErrInvalidDuration = errors.New("duration cannot be negative")

	// ErrMissingRequiredFields is returned when ride creation lacks route or schedule fields.
	ErrMissingRequiredFields = errors.New("missing required fields")

	// ErrInvalidTime is returned when the departure time is not HH:MM.
	ErrInvalidTime = errors.New("time must be in HH:MM format")

	// ErrInvalidSeatCount is returned when the seat count is out of range for the vehicle type.
	ErrInvalidSeatCount = errors.New("invalid seat count for vehicle type")

	// ErrDriverNotVerified is returned when the creator has not passed driver verification.
	ErrDriverNotVerified = errors.New("driver not verified")

	// ErrNotRideOwner is returned when the acting user does not own the ride.
	ErrNotRideOwner = errors.New("not authorized")

	// ErrOwnRide is returned when a driver tries to join their own ride.
	ErrOwnRide = errors.New("cannot join own ride")

	// ErrAlreadyRequested is returned when the requester is already pending or accepted.
	ErrAlreadyRequested = errors.New("already requested or joined this ride")

	// ErrNoSeatsAvailable is returned when the ride has no seats left.
	ErrNoSeatsAvailable = errors.New("no seats available")

	// ErrRequestNotFound is returned when responding to a rider who is not pending.
	ErrRequestNotFound = errors.New("rider request not found")

	// ErrInvalidAction is returned when a response action is neither accept nor reject.
	ErrInvalidAction = errors.New("invalid action")

	// ErrInvalidOTP is returned when no confirmed passenger matches the submitted OTP.
	ErrInvalidOTP = errors.New("invalid otp or rider already onboard")
)
