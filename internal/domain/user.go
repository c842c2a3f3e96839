package domain

import "time"

// User represents a registered student. Authentication and identity
// verification are handled by an upstream service; only the fields the ride
// core needs are modeled here.
type User struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	DriverVerified bool // set once the external verification flow approves the license
	CreatedAt      time.Time
}
