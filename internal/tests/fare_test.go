package tests

import (
	"errors"
	"testing"

	"campusride/internal/domain"
	"campusride/internal/service"
)

// ──────────────────────────────────────────────
// 1. FARE CALCULATION
// ──────────────────────────────────────────────

func TestCalculateFare_Quotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		distanceKm      float64
		durationMin     int
		vehicle         domain.VehicleType
		wantRiderCost   int
		wantEarnings    int
		wantPlatformFee int
		wantMinimum     bool
	}{
		{
			name:            "car zero trip clamps to minimum",
			distanceKm:      0,
			durationMin:     0,
			vehicle:         domain.VehicleTypeCar,
			wantRiderCost:   85,
			wantEarnings:    68,
			wantPlatformFee: 17,
			wantMinimum:     true,
		},
		{
			name:            "car standard trip",
			distanceKm:      10,
			durationMin:     20,
			vehicle:         domain.VehicleTypeCar,
			wantRiderCost:   240,
			wantEarnings:    192,
			wantPlatformFee: 48,
			wantMinimum:     false,
		},
		{
			name:            "bike zero trip clamps to minimum",
			distanceKm:      0,
			durationMin:     0,
			vehicle:         domain.VehicleTypeBike,
			wantRiderCost:   30,
			wantEarnings:    24,
			wantPlatformFee: 6,
			wantMinimum:     true,
		},
		{
			name:            "bike standard trip",
			distanceKm:      5,
			durationMin:     10,
			vehicle:         domain.VehicleTypeBike,
			wantRiderCost:   75,
			wantEarnings:    60,
			wantPlatformFee: 15,
			wantMinimum:     false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			quote, err := service.CalculateFare(tt.distanceKm, tt.durationMin, tt.vehicle)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if quote.RiderCost != tt.wantRiderCost {
				t.Errorf("rider cost: expected %d, got %d", tt.wantRiderCost, quote.RiderCost)
			}
			if quote.DriverEarnings != tt.wantEarnings {
				t.Errorf("driver earnings: expected %d, got %d", tt.wantEarnings, quote.DriverEarnings)
			}
			if quote.Breakdown.PlatformFee != tt.wantPlatformFee {
				t.Errorf("platform fee: expected %d, got %d", tt.wantPlatformFee, quote.Breakdown.PlatformFee)
			}
			if quote.Breakdown.MinimumFareApplied != tt.wantMinimum {
				t.Errorf("minimum fare applied: expected %v, got %v", tt.wantMinimum, quote.Breakdown.MinimumFareApplied)
			}

			// The split must always reconcile.
			if quote.DriverEarnings+quote.Breakdown.PlatformFee != quote.RiderCost {
				t.Errorf("earnings %d + fee %d != rider cost %d",
					quote.DriverEarnings, quote.Breakdown.PlatformFee, quote.RiderCost)
			}
		})
	}
}

func TestCalculateFare_InvalidInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		distanceKm  float64
		durationMin int
		vehicle     domain.VehicleType
		wantErr     error
	}{
		{"negative distance", -1, 10, domain.VehicleTypeCar, service.ErrInvalidDistance},
		{"negative duration", 5, -1, domain.VehicleTypeCar, service.ErrInvalidDuration},
		{"unknown vehicle", 5, 10, domain.VehicleType("Truck"), service.ErrInvalidVehicleType},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := service.CalculateFare(tt.distanceKm, tt.durationMin, tt.vehicle)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateVehicleType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    domain.VehicleType
		wantErr bool
	}{
		{"Car", domain.VehicleTypeCar, false},
		{"Bike", domain.VehicleTypeBike, false},
		{"", domain.VehicleTypeCar, false}, // defaults to Car
		{"Truck", "", true},
		{"car", "", true}, // case sensitive
	}

	for _, tt := range tests {
		got, err := service.ValidateVehicleType(tt.input)
		if tt.wantErr {
			if !errors.Is(err, service.ErrInvalidVehicleType) {
				t.Errorf("%q: expected ErrInvalidVehicleType, got %v", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.want, got)
		}
	}
}
