package service

import (
	"math"

	"campusride/internal/domain"
)

// CommissionRate is the platform's cut of the rider cost.
const CommissionRate = 0.20

// rateCard holds the flat per-class pricing inputs.
type rateCard struct {
	baseFare    float64
	costPerKm   float64
	costPerMin  float64
	minimumFare float64
}

var rateCards = map[domain.VehicleType]rateCard{
	domain.VehicleTypeBike: {baseFare: 25, costPerKm: 8, costPerMin: 1, minimumFare: 30},
	domain.VehicleTypeCar:  {baseFare: 50, costPerKm: 15, costPerMin: 2, minimumFare: 85},
}

// FareBreakdown itemizes a fare quote for auditability.
type FareBreakdown struct {
	BaseFare           int
	DistanceFare       int
	TimeFare           int
	MinimumFareApplied bool
	PlatformFee        int
}

// FareQuote is the computed rider cost and driver earnings for a given
// distance, duration and vehicle class. Ephemeral; embedded into a ride at
// creation time.
type FareQuote struct {
	RiderCost      int
	DriverEarnings int
	Breakdown      FareBreakdown
}

// CalculateFare computes a fare quote. Pure and deterministic: the total is
// base + distance and time components, clamped to the class minimum, then
// split between rider cost and driver earnings after the platform commission.
func CalculateFare(distanceKm float64, durationMin int, vehicle domain.VehicleType) (*FareQuote, error) {
	if distanceKm < 0 {
		return nil, ErrInvalidDistance
	}
	if durationMin < 0 {
		return nil, ErrInvalidDuration
	}

	card, ok := rateCards[vehicle]
	if !ok {
		return nil, ErrInvalidVehicleType
	}

	distanceCost := distanceKm * card.costPerKm
	timeCost := float64(durationMin) * card.costPerMin

	total := card.baseFare + distanceCost + timeCost
	if total < card.minimumFare {
		total = card.minimumFare
	}

	riderCost := int(math.Round(total))
	platformFee := int(math.Round(float64(riderCost) * CommissionRate))

	return &FareQuote{
		RiderCost:      riderCost,
		DriverEarnings: riderCost - platformFee,
		Breakdown: FareBreakdown{
			BaseFare:           int(math.Round(card.baseFare)),
			DistanceFare:       int(math.Round(distanceCost)),
			TimeFare:           int(math.Round(timeCost)),
			MinimumFareApplied: total == card.minimumFare,
			PlatformFee:        platformFee,
		},
	}, nil
}

// ValidateVehicleType validates a vehicle type string, defaulting to Car.
func ValidateVehicleType(vehicle string) (domain.VehicleType, error) {
	switch domain.VehicleType(vehicle) {
	case domain.VehicleTypeCar, domain.VehicleTypeBike:
		return domain.VehicleType(vehicle), nil
	case "":
		return domain.VehicleTypeCar, nil // Default to car
	default:
		return "", ErrInvalidVehicleType
	}
}
