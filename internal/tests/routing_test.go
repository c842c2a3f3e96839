package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusride/internal/service"
)

// ──────────────────────────────────────────────
// 2. ROUTING GATEWAY
// ──────────────────────────────────────────────

// Bangalore city center to Mysore, and a short hop within Bangalore.
const (
	blrLat = 12.9716
	blrLng = 77.5946
	mysLat = 12.2958
	mysLng = 76.6394
	hopLat = 12.9816
	hopLng = 77.6046
)

func TestFallbackRoute_Deterministic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		lat1, lon1   float64
		lat2, lon2   float64
		wantDistance float64
		wantDuration int
	}{
		{"intercity", blrLat, blrLng, mysLat, mysLng, 166.42, 333},
		{"short hop", blrLat, blrLng, hopLat, hopLng, 2.02, 4},
		{"zero distance", blrLat, blrLng, blrLat, blrLng, 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			route := service.FallbackRoute(tt.lat1, tt.lon1, tt.lat2, tt.lon2)

			if route.Source != service.RouteSourceHaversine {
				t.Errorf("expected source %s, got %s", service.RouteSourceHaversine, route.Source)
			}
			if route.DistanceKm != tt.wantDistance {
				t.Errorf("expected distance %.2f, got %.2f", tt.wantDistance, route.DistanceKm)
			}
			if route.DurationMin != tt.wantDuration {
				t.Errorf("expected duration %d, got %d", tt.wantDuration, route.DurationMin)
			}

			// Same inputs must yield the same estimate every time.
			again := service.FallbackRoute(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if *again != *route {
				t.Errorf("fallback not deterministic: %+v vs %+v", route, again)
			}
		})
	}
}

func TestGetRoute_UsesLiveServiceWhenHealthy(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":12340,"duration":900}]}`))
	}))
	defer ts.Close()

	routing := service.NewRoutingService(ts.URL, time.Second)
	route := routing.GetRoute(context.Background(), blrLat, blrLng, hopLat, hopLng)

	if route.Source != service.RouteSourceOSRM {
		t.Errorf("expected source %s, got %s", service.RouteSourceOSRM, route.Source)
	}
	if route.DistanceKm != 12.34 {
		t.Errorf("expected distance 12.34, got %.2f", route.DistanceKm)
	}
	if route.DurationMin != 15 {
		t.Errorf("expected duration 15, got %d", route.DurationMin)
	}
}

func TestGetRoute_FallsBackOnServerError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	routing := service.NewRoutingService(ts.URL, time.Second)
	route := routing.GetRoute(context.Background(), blrLat, blrLng, hopLat, hopLng)

	if route.Source != service.RouteSourceHaversine {
		t.Errorf("expected fallback source, got %s", route.Source)
	}
	if route.DistanceKm != 2.02 || route.DurationMin != 4 {
		t.Errorf("expected fallback estimate 2.02km/4min, got %.2fkm/%dmin", route.DistanceKm, route.DurationMin)
	}
}

func TestGetRoute_FallsBackOnNoRoute(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer ts.Close()

	routing := service.NewRoutingService(ts.URL, time.Second)
	route := routing.GetRoute(context.Background(), blrLat, blrLng, hopLat, hopLng)

	if route.Source != service.RouteSourceHaversine {
		t.Errorf("expected fallback source, got %s", route.Source)
	}
}

func TestGetRoute_FallsBackWhenUnreachable(t *testing.T) {
	t.Parallel()

	// Nothing listens on this port; the dial fails immediately.
	routing := service.NewRoutingService("http://127.0.0.1:1", 100*time.Millisecond)
	route := routing.GetRoute(context.Background(), blrLat, blrLng, mysLat, mysLng)

	if route.Source != service.RouteSourceHaversine {
		t.Errorf("expected fallback source, got %s", route.Source)
	}
	if route.DistanceKm != 166.42 || route.DurationMin != 333 {
		t.Errorf("expected fallback estimate 166.42km/333min, got %.2fkm/%dmin", route.DistanceKm, route.DurationMin)
	}
}

func TestGetRoute_FallsBackOnTimeout(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer ts.Close()

	routing := service.NewRoutingService(ts.URL, 50*time.Millisecond)
	route := routing.GetRoute(context.Background(), blrLat, blrLng, hopLat, hopLng)

	if route.Source != service.RouteSourceHaversine {
		t.Errorf("expected fallback source after timeout, got %s", route.Source)
	}
}
