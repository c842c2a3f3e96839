package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"
)

const (
	earthRadiusKm   = 6371.0
	roadFactor      = 1.3  // approximates road distance over straight-line distance
	avgCitySpeedKmH = 30.0

	// DefaultOSRMBaseURL is the public OSRM instance used when no routing
	// endpoint is configured.
	DefaultOSRMBaseURL = "http://router.project-osrm.org"

	// DefaultRoutingTimeout bounds the single attempt against the live
	// routing service.
	DefaultRoutingTimeout = 3 * time.Second
)

// Route sources reported in estimates.
const (
	RouteSourceOSRM      = "OSRM"
	RouteSourceHaversine = "HAVERSINE"
)

// RouteEstimate is the road distance and duration between two coordinates.
type RouteEstimate struct {
	DistanceKm  float64
	DurationMin int
	Source      string
}

// RoutingService resolves road routes via OSRM, degrading to a deterministic
// haversine estimate whenever the live service is slow or unavailable. It
// never returns an error to callers.
type RoutingService struct {
	baseURL string
	client  *http.Client
}

// NewRoutingService creates a new RoutingService. An empty baseURL selects
// the public OSRM instance; a non-positive timeout selects the default.
func NewRoutingService(baseURL string, timeout time.Duration) *RoutingService {
	if baseURL == "" {
		baseURL = DefaultOSRMBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultRoutingTimeout
	}

	return &RoutingService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetRoute returns the road distance and duration between two points. At most
// one attempt is made against the live service; any failure falls back to the
// haversine estimate.
func (s *RoutingService) GetRoute(ctx context.Context, lat1, lon1, lat2, lon2 float64) *RouteEstimate {
	estimate, err := s.fetchOSRMRoute(ctx, lat1, lon1, lat2, lon2)
	if err != nil {
		log.Printf("routing degraded, using haversine fallback: %v", err)
		return FallbackRoute(lat1, lon1, lat2, lon2)
	}
	return estimate
}

// osrmResponse is the subset of the OSRM route response we consume.
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
	} `json:"routes"`
}

func (s *RoutingService) fetchOSRMRoute(ctx context.Context, lat1, lon1, lat2, lon2 float64) (*RouteEstimate, error) {
	// OSRM takes lon,lat pairs.
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		s.baseURL, lon1, lat1, lon2, lat2)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osrm returned status %d", resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	if body.Code != "Ok" || len(body.Routes) == 0 {
		return nil, fmt.Errorf("osrm returned code %q with %d routes", body.Code, len(body.Routes))
	}

	route := body.Routes[0]
	return &RouteEstimate{
		DistanceKm:  round2(route.Distance / 1000),
		DurationMin: int(math.Round(route.Duration / 60)),
		Source:      RouteSourceOSRM,
	}, nil
}

// FallbackRoute is the deterministic offline estimate: great-circle distance
// scaled by the road factor, duration at average city speed.
func FallbackRoute(lat1, lon1, lat2, lon2 float64) *RouteEstimate {
	distanceKm := round2(HaversineKm(lat1, lon1, lat2, lon2) * roadFactor)

	return &RouteEstimate{
		DistanceKm:  distanceKm,
		DurationMin: int(math.Round(distanceKm / avgCitySpeedKmH * 60)),
		Source:      RouteSourceHaversine,
	}
}

// HaversineKm returns the great-circle distance between two points on a
// sphere of radius 6371 km.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
